// Package http assembles the route tree and the HTTP server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/prometheus"
	"github.com/civitas-ai/opinionspace/internal/interfaces/http/handlers"
	"github.com/civitas-ai/opinionspace/internal/interfaces/http/middleware"
)

// RouterConfig aggregates handler and middleware dependencies for the route
// tree.  Nil handlers leave their routes unregistered, which keeps tests and
// partial deployments simple.
type RouterConfig struct {
	SimulationHandler *handlers.SimulationHandler
	ProjectionHandler *handlers.ProjectionHandler
	HealthHandler     *handlers.HealthHandler

	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector

	CORS      *middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig
	Logging   *middleware.LoggingConfig
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			logCfg = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.SimulationHandler != nil {
			api.Get("/simulations", cfg.SimulationHandler.List)
			api.Get("/simulations/{simulationID}", cfg.SimulationHandler.Get)
		}
		if cfg.ProjectionHandler != nil {
			api.Get("/simulations/{simulationID}/opinion-space", cfg.ProjectionHandler.Get)
			api.Delete("/simulations/{simulationID}/opinion-space", cfg.ProjectionHandler.Invalidate)
		}
	})

	return r
}
