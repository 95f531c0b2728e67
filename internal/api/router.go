// Package api provides the HTTP API for the pricing service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/account"
	"github.com/courierops/pricegrid/internal/api/handler"
	"github.com/courierops/pricegrid/internal/api/middleware"
	"github.com/courierops/pricegrid/internal/auth"
	"github.com/courierops/pricegrid/internal/pricing"
	"github.com/courierops/pricegrid/internal/volume"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	TokenService   *auth.TokenService
	ConfigService  *pricing.Service
	AccountService *account.Service
	VolumeService  *volume.Service

	// DB is pinged by the readiness check. May be nil in tests.
	DB handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pricegrid-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	configHandler := handler.NewConfigHandler(cfg.ConfigService, cfg.Logger)
	accountHandler := handler.NewAccountHandler(cfg.AccountService, cfg.Logger)
	volumeHandler := handler.NewVolumeHandler(cfg.VolumeService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.TokenService)

	writeRateLimit := middleware.RateLimitByService(middleware.WriteRateLimit)
	readRateLimit := middleware.RateLimitByService(middleware.ReadRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Configuration lifecycle (authenticated)
		r.Route("/configs", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(writeRateLimit)
				r.Post("/individual/{clientId}", configHandler.CreateIndividual)
				r.Post("/group/{accountId}", configHandler.CreateGroup)
				r.Put("/{accountId}", configHandler.UpdateLast)
				r.Delete("/{accountId}", configHandler.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(readRateLimit)
				r.Get("/client/{clientId}", configHandler.ListForClient)
				r.Get("/client/{clientId}/active", configHandler.ActiveForClient)
			})
		})

		// Accounts (authenticated)
		r.Route("/accounts", func(r chi.Router) {
			r.Use(authMiddleware)

			r.With(writeRateLimit).Post("/", accountHandler.Create)
			r.With(writeRateLimit).Delete("/{accountId}", accountHandler.Delete)
			r.With(readRateLimit).Get("/client/{clientId}", accountHandler.ByClientID)
			r.With(readRateLimit).Get("/{accountId}", accountHandler.ByID)
		})

		// Delivery volumes (authenticated)
		r.Route("/volumes", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(readRateLimit)
			r.Get("/{accountId}", volumeHandler.TotalsForRange)
		})
	})

	return r
}
