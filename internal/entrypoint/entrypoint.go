package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/audit"
	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/database"
	auditRepo "github.com/mrlokans/readtrack/internal/database/audit"
	dbreadings "github.com/mrlokans/readtrack/internal/database/readings"
	"github.com/mrlokans/readtrack/internal/database/users"
	http_controllers "github.com/mrlokans/readtrack/internal/http"
	"github.com/mrlokans/readtrack/internal/logging"
	"github.com/mrlokans/readtrack/internal/readings"
	"github.com/mrlokans/readtrack/internal/sanitize"
	"github.com/mrlokans/readtrack/internal/scheduler"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// and calls onShutdown within the configured timeout.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server", zap.Duration("timeout", timeout))
	case err := <-serverErr:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	logger.Info("server exiting")
}

// Run wires every component together and serves the API.
func Run(cfg *config.Config, version string) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting readtrack", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}()

	if cfg.Auth.JWTSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			logger.Fatal("failed to generate token secret", zap.Error(err))
		}
		cfg.Auth.JWTSecret = secret
		logger.Warn("AUTH_JWT_SECRET is not set; generated a random secret, issued tokens will not survive a restart")
	}

	userRepo := users.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo.NewRepository(db.DB), cfg.Audit.Enabled, logger)

	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTExpiry)
	authService := auth.NewService(userRepo, tokens, cfg.Auth, auditService, logger)
	authController := auth.NewAuthController(authService, cfg.Auth, logger)

	sanitizer := sanitize.NewPolicy()
	readingService := readings.NewService(dbreadings.NewRepository(db.DB), userRepo, sanitizer, auditService, logger)

	// Task queue and retention schedule
	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks, logger)
		if err != nil {
			logger.Fatal("failed to initialize task queue", zap.Error(err))
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService, logger))
		taskClient.Start(ctx)

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit, logger)
		if err := cleanupScheduler.Start(ctx); err != nil {
			logger.Fatal("failed to start audit cleanup scheduler", zap.Error(err))
		}
	} else {
		logger.Info("task queue disabled, audit events will not be pruned")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthService:    authService,
		AuthController: authController,
		ReadingService: readingService,
		AuditService:   auditService,
		Sanitizer:      sanitizer,
		Database:       db,
		Logger:         logger,
		Version:        version,
		HSTSMaxAge:     cfg.HTTP.HSTSMaxAge,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		authController.Stop()
		auditService.Wait()
	}

	Serve(ctx, router, cfg, logger, onShutdown)
}

// Migrate runs a goose migration command against the configured database
// without starting the server.
func Migrate(cfg *config.Config, command string) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Migrate(command)
}
