//go:build integration

package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/database/postgres/repositories"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("OPSPACE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("OPSPACE_TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl := `
	CREATE TABLE IF NOT EXISTS simulations (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		scenario    TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'pending',
		clusters    JSONB NOT NULL DEFAULT '[]',
		agents      JSONB NOT NULL DEFAULT '[]',
		results     JSONB NOT NULL DEFAULT '[]',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	TRUNCATE simulations;`
	_, err = pool.Exec(context.Background(), ddl)
	require.NoError(t, err)
	return pool
}

func fp(v float64) *float64 { return &v }

func newTestSimulation(t *testing.T, title string) *simulation.Simulation {
	t.Helper()
	sim, err := simulation.NewSimulation(title, "A proposed policy change.", []simulation.Cluster{
		{ID: "c1", Name: "Supporters", Weight: 60},
		{ID: "c2", Name: "Skeptics", Weight: 40},
	})
	require.NoError(t, err)
	return sim
}

func TestSimulationRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewSimulationRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sim := newTestSimulation(t, "Round trip")
	sim.Agents = []simulation.AgentMembership{
		{AgentID: "a1", ClusterID: "c1", DisplayName: "Agent One"},
	}
	sim.Results = []simulation.AgentResult{
		{AgentID: "a1", ClusterID: "c1", Turns: []simulation.Turn{
			{Round: 1, Score: fp(72), Emotion: "hope", Response: "Sounds promising."},
		}},
	}

	require.NoError(t, repo.Create(ctx, sim))

	got, err := repo.GetByID(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, sim.Title, got.Title)
	assert.Equal(t, simulation.StatusPending, got.Status)
	assert.Len(t, got.Clusters, 2)
	require.Len(t, got.Results, 1)
	require.Len(t, got.Results[0].Turns, 1)
	assert.Equal(t, 72.0, *got.Results[0].Turns[0].Score)
	assert.Equal(t, "hope", got.Results[0].Turns[0].Emotion)
}

func TestSimulationRepositoryGetMissing(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewSimulationRepository(pool, logging.NewNopLogger())

	_, err := repo.GetByID(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSimulationNotFound))
}

func TestSimulationRepositoryCreateDuplicate(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewSimulationRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sim := newTestSimulation(t, "Duplicate")
	require.NoError(t, repo.Create(ctx, sim))

	err := repo.Create(ctx, sim)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestSimulationRepositoryList(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewSimulationRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sim := newTestSimulation(t, "List")
		require.NoError(t, repo.Create(ctx, sim))
		time.Sleep(10 * time.Millisecond) // distinct created_at ordering
	}

	sims, total, err := repo.List(ctx, common.Pagination{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, sims, 2)
	// Listing omits result payloads.
	for _, s := range sims {
		assert.Empty(t, s.Results)
	}
	// Newest first.
	assert.True(t, !sims[0].CreatedAt.Before(sims[1].CreatedAt))
}

func TestSimulationRepositoryUpdateStatus(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewSimulationRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sim := newTestSimulation(t, "Status")
	require.NoError(t, repo.Create(ctx, sim))

	require.NoError(t, repo.UpdateStatus(ctx, sim.ID, simulation.StatusRunning))
	got, err := repo.GetByID(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, simulation.StatusRunning, got.Status)

	err = repo.UpdateStatus(ctx, "missing", simulation.StatusFailed)
	assert.True(t, errors.IsCode(err, errors.CodeSimulationNotFound))
}

func TestSimulationRepositorySaveResults(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewSimulationRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sim := newTestSimulation(t, "Results")
	require.NoError(t, repo.Create(ctx, sim))

	agents := []simulation.AgentMembership{{AgentID: "a1", ClusterID: "c1"}}
	results := []simulation.AgentResult{
		{AgentID: "a1", ClusterID: "c1", Turns: []simulation.Turn{{Round: 1, Score: fp(40)}}},
	}
	require.NoError(t, repo.SaveResults(ctx, sim.ID, agents, results))

	got, err := repo.GetByID(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, simulation.StatusCompleted, got.Status)
	assert.Len(t, got.Agents, 1)
	assert.Len(t, got.Results, 1)
}
