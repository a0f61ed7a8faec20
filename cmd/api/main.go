package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/quotation-api/docs"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/database"
	"github.com/straye-as/quotation-api/internal/http/handler"
	"github.com/straye-as/quotation-api/internal/http/middleware"
	"github.com/straye-as/quotation-api/internal/http/router"
	"github.com/straye-as/quotation-api/internal/jobs"
	"github.com/straye-as/quotation-api/internal/logger"
	"github.com/straye-as/quotation-api/internal/metrics"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/service"
	"github.com/straye-as/quotation-api/internal/storage"
	"go.uber.org/zap"
)

// @title Quotation API
// @version 1.0
// @description Quotation management: documents, line items, tabs, uploads and xlsx export

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Google ID token as "Bearer <token>"

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system integrations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(basicCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	fileStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Repositories
	quotationRepo := repository.NewQuotationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, log)
	quotationService := service.NewQuotationService(quotationRepo, m, log)
	uploadService := service.NewUploadService(fileStorage, cfg.Storage.PublicPrefix, m, log)
	exportService := service.NewExportService(quotationService, uploadService, log)

	// Middleware
	tokenValidator := auth.NewGoogleTokenValidator(&cfg.Google)
	authMiddleware := auth.NewMiddleware(tokenValidator, authService, cfg.ApiKey.Value, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	quotationHandler := handler.NewQuotationHandler(quotationService, exportService, log)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.Storage.MaxUploadBytes(), log)
	authHandler := handler.NewAuthHandler(tokenValidator, authService, log)
	userHandler := handler.NewUserHandler(authService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		m,
		authMiddleware,
		rateLimiter,
		quotationHandler,
		uploadHandler,
		authHandler,
		userHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.UploadSweepEnabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.ScheduleUploadSweep(scheduler, &cfg.Jobs, fileStorage, quotationRepo, uploadService, m, log); err != nil {
			log.Error("Failed to register upload sweep job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with upload sweep job",
				zap.String("cron_expr", cfg.Jobs.UploadSweepSchedule),
				zap.Duration("grace_period", cfg.Jobs.UploadGracePeriod()),
			)
		}
	} else {
		log.Info("Upload sweep disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
