// Package api provides the read-only HTTP API over the conditions cache.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/api/handler"
	"github.com/blueflaggreece/shorecast/internal/api/middleware"
	"github.com/blueflaggreece/shorecast/internal/store"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version string
	Logger  zerolog.Logger
	Cache   handler.CacheLoader
	Matcher *store.Matcher
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	conditionsHandler := handler.NewConditionsHandler(cfg.Cache, cfg.Matcher)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.Cache)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.With(standardRateLimit).Get("/conditions", conditionsHandler.GetConditions)
	})

	return r
}
