// Package opinionspace orchestrates projection computation: load the
// simulation snapshot, check the cache, run the engine, backfill the cache,
// and announce the result.
package opinionspace

import (
	"context"
	"fmt"
	"time"

	domain "github.com/civitas-ai/opinionspace/internal/domain/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/messaging/kafka"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/prometheus"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// ProjectionCache is the subset of the redis cache the service needs.
type ProjectionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher announces computed projections.
type EventPublisher interface {
	PublishProjectionComputed(ctx context.Context, payload kafka.ProjectionComputedPayload) error
}

// ProjectionService is the application-facing API for opinion-space views.
type ProjectionService interface {
	// GetProjection returns the projection for a simulation, computing and
	// caching it on demand.
	GetProjection(ctx context.Context, simulationID string, opts domain.Options) (*domain.Projection, error)

	// InvalidateProjection drops any cached projections for a simulation,
	// typically after its results change.
	InvalidateProjection(ctx context.Context, simulationID string) error

	// GetSimulation loads the raw simulation aggregate.
	GetSimulation(ctx context.Context, simulationID string) (*simulation.Simulation, error)

	// ListSimulations pages through stored simulations, newest first.
	ListSimulations(ctx context.Context, p common.Pagination) ([]*simulation.Simulation, int64, error)
}

type projectionService struct {
	repo     simulation.Repository
	cache    ProjectionCache
	engine   *domain.Engine
	producer EventPublisher
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
	cacheTTL time.Duration
}

// ServiceOption customises service construction.
type ServiceOption func(*projectionService)

// WithCache enables the projection cache.
func WithCache(cache ProjectionCache, ttl time.Duration) ServiceOption {
	return func(s *projectionService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithPublisher enables projection.computed events.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *projectionService) { s.producer = p }
}

// WithMetrics enables metric emission.
func WithMetrics(m *prometheus.AppMetrics) ServiceOption {
	return func(s *projectionService) { s.metrics = m }
}

// WithEngine overrides the default projection engine.
func WithEngine(e *domain.Engine) ServiceOption {
	return func(s *projectionService) { s.engine = e }
}

// NewProjectionService wires the service.  Cache, publisher, and metrics are
// optional; the service degrades to compute-on-every-call without them.
func NewProjectionService(repo simulation.Repository, log logging.Logger, opts ...ServiceOption) ProjectionService {
	s := &projectionService{
		repo:     repo,
		engine:   domain.NewEngine(),
		logger:   log.Named("projection-service"),
		cacheTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cacheKey separates bridge-bearing and bridge-free variants so a request
// without bridges never serves a payload with them and vice versa.
func cacheKey(simulationID string, opts domain.Options) string {
	return fmt.Sprintf("projection:%s:bridges=%t", simulationID, opts.IncludeBridges)
}

func (s *projectionService) GetProjection(ctx context.Context, simulationID string, opts domain.Options) (*domain.Projection, error) {
	key := cacheKey(simulationID, opts)

	if s.cache != nil {
		var cached domain.Projection
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.countCache("hit")
			return &cached, nil
		}
		s.countCache("miss")
	}

	sim, err := s.repo.GetByID(ctx, simulationID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	proj := s.engine.Project(sim, opts)
	elapsed := time.Since(start)
	s.observeProjection(proj, opts, elapsed)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, proj, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache projection",
				logging.String("simulation_id", simulationID), logging.Err(err))
		}
	}

	if s.producer != nil {
		payload := kafka.ProjectionComputedPayload{
			SimulationID:   simulationID,
			ClusterCount:   len(proj.Clusters),
			BridgeCount:    len(proj.Bridges),
			IncludeBridges: opts.IncludeBridges,
			DurationMs:     elapsed.Milliseconds(),
			ComputedAt:     time.Now().UTC(),
		}
		if err := s.producer.PublishProjectionComputed(ctx, payload); err != nil {
			// Event delivery is best effort; the projection itself succeeded.
			s.logger.Warn("Failed to publish projection event",
				logging.String("simulation_id", simulationID), logging.Err(err))
		}
	}

	s.logger.Info("Computed projection",
		logging.String("simulation_id", simulationID),
		logging.Int("clusters", len(proj.Clusters)),
		logging.Int("bridges", len(proj.Bridges)),
		logging.Duration("elapsed", elapsed),
	)
	return proj, nil
}

func (s *projectionService) InvalidateProjection(ctx context.Context, simulationID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx,
		cacheKey(simulationID, domain.Options{}),
		cacheKey(simulationID, domain.Options{IncludeBridges: true}),
	)
}

func (s *projectionService) GetSimulation(ctx context.Context, simulationID string) (*simulation.Simulation, error) {
	return s.repo.GetByID(ctx, simulationID)
}

func (s *projectionService) ListSimulations(ctx context.Context, p common.Pagination) ([]*simulation.Simulation, int64, error) {
	return s.repo.List(ctx, p)
}

func (s *projectionService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.ProjectionCacheHits.WithLabelValues(result).Inc()
	}
}

func (s *projectionService) observeProjection(proj *domain.Projection, opts domain.Options, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	bridges := fmt.Sprintf("%t", opts.IncludeBridges)
	s.metrics.ProjectionsTotal.WithLabelValues("ok", bridges).Inc()
	s.metrics.ProjectionDuration.WithLabelValues(bridges).Observe(elapsed.Seconds())
	s.metrics.ProjectionClusters.WithLabelValues().Observe(float64(len(proj.Clusters)))
}
