package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/database"
	"github.com/straye-as/quotation-api/internal/http/handler"
	"github.com/straye-as/quotation-api/internal/http/middleware"
	"github.com/straye-as/quotation-api/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/quotation-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	metrics          *metrics.Metrics
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	quotationHandler *handler.QuotationHandler
	uploadHandler    *handler.UploadHandler
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	m *metrics.Metrics,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	quotationHandler *handler.QuotationHandler,
	uploadHandler *handler.UploadHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		metrics:          m,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		quotationHandler: quotationHandler,
		uploadHandler:    uploadHandler,
		authHandler:      authHandler,
		userHandler:      userHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness probe
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": map[string]interface{}{
					"database": map[string]string{"status": "unhealthy", "error": err.Error()},
				},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
			"checks": map[string]interface{}{
				"database": map[string]string{"status": "healthy"},
			},
		})
	})

	if rt.cfg.Metrics.Enabled && rt.metrics != nil {
		r.Method(http.MethodGet, rt.cfg.Metrics.Path, rt.metrics.Handler())
	}

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Stored uploads are public so image tags can load them directly
	r.Get(uploadRoute(rt.cfg.Storage.PublicPrefix), rt.uploadHandler.Serve)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}

		// Public routes (no auth required)
		r.Post("/auth/callback", rt.authHandler.Callback)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(middleware.CaptureUser)

			r.Get("/auth/me", rt.authHandler.Me)

			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Put("/{id}", rt.quotationHandler.Update)
				r.Delete("/{id}", rt.quotationHandler.Delete)
				r.Post("/{id}/copy", rt.quotationHandler.Copy)
				r.Get("/{id}/export", rt.quotationHandler.Export)
			})

			r.With(rt.rateLimiter.LimitUploads).Post("/uploads", rt.uploadHandler.Upload)

			// Administration
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Put("/users/{id}/approval", rt.userHandler.SetApproval)
			})
		})
	})

	return r
}

func uploadRoute(prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	return prefix + "/{name}"
}
