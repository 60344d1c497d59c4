package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/audit"
	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/logging"
	"github.com/mrlokans/readtrack/internal/readings"
)

// RouterConfig holds all dependencies for creating the HTTP router.
type RouterConfig struct {
	AuthService    *auth.Service
	AuthController *auth.AuthController
	ReadingService *readings.Service
	AuditService   *audit.Service
	Sanitizer      readings.Sanitizer
	Database       Pinger
	Logger         *zap.Logger

	Version    string
	HSTSMaxAge int
}

// NewRouter creates and configures the HTTP router with all endpoints.
//
//	POST  /api/auth/login
//	POST  /api/users
//	GET   /api/users/:user_id                   (bearer)
//	POST  /api/users/:user_id                   (bearer, self)
//	GET   /api/users/:user_id/books/:book_id    (bearer)
//	PATCH /api/users/:user_id/books/:book_id    (bearer, self)
//	GET   /api/users/:user_id/events            (bearer, self)
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.RequestLogger(cfg.Logger))
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	users := NewUsersController(cfg.AuthService, cfg.ReadingService, cfg.Sanitizer, cfg.Logger)
	records := NewRecordsController(cfg.ReadingService, cfg.Logger)

	bearer := auth.NewMiddleware(cfg.AuthService).RequireBearer()
	self := auth.RequireSelf("user_id")

	api := router.Group("/api")
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(api)
	}

	api.POST("/users", users.Register)
	api.GET("/users/:user_id", bearer, users.ListRecords)
	api.POST("/users/:user_id", bearer, self, users.CreateRecord)
	api.GET("/users/:user_id/books/:book_id", bearer, records.GetRecord)
	api.PATCH("/users/:user_id/books/:book_id", bearer, self, records.UpdateRecord)

	if cfg.AuditService != nil {
		events := NewAuditController(cfg.AuditService, cfg.Sanitizer, cfg.Logger)
		api.GET("/users/:user_id/events", bearer, self, events.GetAuditEvents)
	}

	return router
}
