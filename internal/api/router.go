// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/middleware"
)

// healthRateLimit is deliberately permissive: monitoring agents poll the
// health endpoints far more often than any client hits the data API.
const healthRateLimit = 1000

// Router assembles the chi handler tree.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
}

// NewRouter creates a router for the given handler and API configuration.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup builds the full middleware and route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS is global so
	// OPTIONS preflight works on every path.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, router.cfg.RateLimitWindow))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/jobs/catalog-population", router.handler.EnqueueJob)
		r.Get("/jobs/catalog-population/{jobId}", router.handler.JobStatus)

		r.Get("/catalog/{kind}/status", router.handler.CatalogStatus)
		r.Delete("/catalog/{kind}", router.handler.ClearCatalog)

		r.Get("/completion/{userScope}/{groupingKey}", router.handler.Completion)
	})

	return r
}

// rateLimit returns the per-IP limiter for data endpoints, or a no-op when
// disabled via a non-positive request budget.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		router.cfg.RateLimitReqs,
		router.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}
