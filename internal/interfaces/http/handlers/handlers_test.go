package handlers

import (
	"context"
	"time"

	domain "github.com/civitas-ai/opinionspace/internal/domain/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// mockProjectionService backs handler tests with canned data.
type mockProjectionService struct {
	sims        map[string]*simulation.Simulation
	lastOpts    domain.Options
	invalidated []string
	listErr     error
}

func newMockService() *mockProjectionService {
	return &mockProjectionService{sims: make(map[string]*simulation.Simulation)}
}

func (m *mockProjectionService) add(sim *simulation.Simulation) {
	m.sims[sim.ID] = sim
}

func (m *mockProjectionService) GetProjection(ctx context.Context, id string, opts domain.Options) (*domain.Projection, error) {
	m.lastOpts = opts
	sim, ok := m.sims[id]
	if !ok {
		return nil, errors.New(errors.CodeSimulationNotFound, "simulation not found")
	}
	return domain.NewEngine().Project(sim, opts), nil
}

func (m *mockProjectionService) InvalidateProjection(ctx context.Context, id string) error {
	m.invalidated = append(m.invalidated, id)
	return nil
}

func (m *mockProjectionService) GetSimulation(ctx context.Context, id string) (*simulation.Simulation, error) {
	sim, ok := m.sims[id]
	if !ok {
		return nil, errors.New(errors.CodeSimulationNotFound, "simulation not found")
	}
	return sim, nil
}

func (m *mockProjectionService) ListSimulations(ctx context.Context, p common.Pagination) ([]*simulation.Simulation, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]*simulation.Simulation, 0, len(m.sims))
	for _, sim := range m.sims {
		out = append(out, sim)
	}
	return out, int64(len(out)), nil
}

func fp(v float64) *float64 { return &v }

func sampleSimulation() *simulation.Simulation {
	return &simulation.Simulation{
		ID:     "sim-1",
		Title:  "Budget referendum",
		Status: simulation.StatusCompleted,
		Clusters: []simulation.Cluster{
			{ID: "c1", Name: "Supporters"},
			{ID: "c2", Name: "Opponents"},
		},
		Results: []simulation.AgentResult{
			{AgentID: "a1", ClusterID: "c1", Turns: []simulation.Turn{
				{Round: 1, Score: fp(75), Emotion: "hope", Response: "Worth funding."},
			}},
			{AgentID: "a2", ClusterID: "c2", Turns: []simulation.Turn{
				{Round: 1, Score: fp(20), Emotion: "anger", Response: "Wasteful spending."},
			}},
		},
		CreatedAt: time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC),
	}
}
