// Package repositories contains the PostgreSQL implementations of the domain
// repository interfaces.  Cluster definitions, membership snapshots, and
// per-agent results are stored as JSONB columns: the engine always consumes
// the aggregate whole, so row-per-agent normalization would buy nothing.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	appErrors "github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// SimulationRepository is the PostgreSQL implementation of
// simulation.Repository.
type SimulationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewSimulationRepository creates a repository backed by the given pool.
func NewSimulationRepository(pool *pgxpool.Pool, log logging.Logger) *SimulationRepository {
	return &SimulationRepository{pool: pool, logger: log.Named("simulation-repo")}
}

var _ simulation.Repository = (*SimulationRepository)(nil)

const simulationColumns = `id, title, scenario, status, clusters, agents, results, created_at, updated_at`

// GetByID loads the full aggregate including result payloads.
func (r *SimulationRepository) GetByID(ctx context.Context, id string) (*simulation.Simulation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+simulationColumns+` FROM simulations WHERE id = $1`, id)

	sim, err := scanSimulation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.CodeSimulationNotFound, "simulation not found").
				WithDetail("id=" + id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load simulation")
	}
	return sim, nil
}

// List returns simulations newest-first.  Result payloads are omitted to keep
// listing cheap; GetByID loads them on demand.
func (r *SimulationRepository) List(ctx context.Context, p common.Pagination) ([]*simulation.Simulation, int64, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM simulations`).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count simulations")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, scenario, status, clusters, agents, '[]'::jsonb, created_at, updated_at
		 FROM simulations
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list simulations")
	}
	defer rows.Close()

	var sims []*simulation.Simulation
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan simulation row")
		}
		sims = append(sims, sim)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate simulations")
	}
	return sims, total, nil
}

// Create persists a new aggregate.  Duplicate IDs surface as a conflict.
func (r *SimulationRepository) Create(ctx context.Context, sim *simulation.Simulation) error {
	if err := sim.Validate(); err != nil {
		return err
	}

	clusters, agents, results, err := marshalPayloads(sim)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = now
	}
	sim.UpdatedAt = now

	_, err = r.pool.Exec(ctx,
		`INSERT INTO simulations (`+simulationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sim.ID, sim.Title, sim.Scenario, string(sim.Status),
		clusters, agents, results, sim.CreatedAt, sim.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Conflict("simulation already exists").WithDetail("id=" + sim.ID)
		}
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to create simulation")
	}

	r.logger.Info("Created simulation",
		logging.String("id", sim.ID),
		logging.Int("clusters", len(sim.Clusters)),
	)
	return nil
}

// UpdateStatus transitions lifecycle state.
func (r *SimulationRepository) UpdateStatus(ctx context.Context, id string, status simulation.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE simulations SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update simulation status")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.CodeSimulationNotFound, "simulation not found").
			WithDetail("id=" + id)
	}
	return nil
}

// SaveResults replaces the membership snapshot and result payload of a
// simulation, typically when an upstream run completes.
func (r *SimulationRepository) SaveResults(ctx context.Context, id string, agents []simulation.AgentMembership, results []simulation.AgentResult) error {
	agentsJSON, err := json.Marshal(agents)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal agents")
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal results")
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE simulations
		 SET agents = $1, results = $2, status = $3, updated_at = $4
		 WHERE id = $5`,
		agentsJSON, resultsJSON, string(simulation.StatusCompleted), time.Now().UTC(), id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to save simulation results")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.CodeSimulationNotFound, "simulation not found").
			WithDetail("id=" + id)
	}
	return nil
}

// rowScanner matches both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSimulation(row rowScanner) (*simulation.Simulation, error) {
	var (
		sim         simulation.Simulation
		status      string
		clustersRaw []byte
		agentsRaw   []byte
		resultsRaw  []byte
	)
	if err := row.Scan(&sim.ID, &sim.Title, &sim.Scenario, &status,
		&clustersRaw, &agentsRaw, &resultsRaw, &sim.CreatedAt, &sim.UpdatedAt); err != nil {
		return nil, err
	}
	sim.Status = simulation.Status(status)

	if err := json.Unmarshal(clustersRaw, &sim.Clusters); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSimulationCorrupt, "invalid clusters payload")
	}
	if err := json.Unmarshal(agentsRaw, &sim.Agents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSimulationCorrupt, "invalid agents payload")
	}
	if err := json.Unmarshal(resultsRaw, &sim.Results); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSimulationCorrupt, "invalid results payload")
	}
	return &sim, nil
}

func marshalPayloads(sim *simulation.Simulation) (clusters, agents, results []byte, err error) {
	if clusters, err = json.Marshal(sim.Clusters); err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal clusters")
	}
	if sim.Agents == nil {
		agents = []byte("[]")
	} else if agents, err = json.Marshal(sim.Agents); err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal agents")
	}
	if sim.Results == nil {
		results = []byte("[]")
	} else if results, err = json.Marshal(sim.Results); err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal results")
	}
	return clusters, agents, results, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
