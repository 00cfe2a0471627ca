package simulation

import (
	"context"

	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// Repository is the persistence contract for simulation aggregates.  The
// postgres implementation lives in internal/infrastructure/database/postgres;
// tests use the mock in internal/testutil.
type Repository interface {
	// GetByID loads the full aggregate including clusters, membership, and
	// results.  Returns an AppError with CodeSimulationNotFound when absent.
	GetByID(ctx context.Context, id string) (*Simulation, error)

	// List returns simulations ordered by creation time descending, without
	// their result payloads.
	List(ctx context.Context, p common.Pagination) ([]*Simulation, int64, error)

	// Create persists a new simulation aggregate.
	Create(ctx context.Context, sim *Simulation) error

	// UpdateStatus transitions the simulation's lifecycle state.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
