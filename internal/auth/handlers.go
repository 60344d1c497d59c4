package auth

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/apperr"
	"github.com/mrlokans/readtrack/internal/config"
)

const MsgTooManyAttempts = "Too many login attempts. Please try again later."

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthController handles the login endpoint.
type AuthController struct {
	service     *Service
	rateLimiter *LoginLimiter
	log         *zap.Logger
}

// NewAuthController creates a controller with its own login rate limiter.
func NewAuthController(service *Service, cfg config.Auth, log *zap.Logger) *AuthController {
	return &AuthController{
		service: service,
		rateLimiter: NewLoginLimiter(LimiterConfig{
			MaxAttempts: cfg.MaxLoginAttempts,
			Window:      cfg.RateLimitWindow,
			Lockout:     cfg.LockoutDuration,
		}),
		log: log,
	}
}

func (ac *AuthController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/auth/login", ac.Login)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// Login exchanges a username and password for a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, apperr.KindValidation, "Invalid JSON body")
		return
	}

	client := ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}

	if allowed, retryAfter := ac.rateLimiter.Allow(client.IP, req.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		abort(c, http.StatusTooManyRequests, apperr.KindUnauthorized, MsgTooManyAttempts)
		return
	}

	result, err := ac.service.Login(c.Request.Context(), LoginInput{
		Username: req.Username,
		Password: req.Password,
	}, client)
	if err != nil {
		kind := apperr.KindOf(err)
		if kind == apperr.KindInternal {
			ac.log.Error("login failed", zap.Error(err))
			abort(c, http.StatusInternalServerError, kind, "internal server error")
			return
		}
		if errors.Is(err, errInvalidCredentials) {
			ac.rateLimiter.RecordFailure(client.IP, req.Username)
		}
		abort(c, apperr.HTTPStatus(kind), kind, err.Error())
		return
	}

	ac.rateLimiter.RecordSuccess(client.IP, req.Username)
	c.JSON(http.StatusOK, result)
}
