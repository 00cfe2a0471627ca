package testutil

import (
	"context"
	"sync"

	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// MockSimulationRepo is an in-memory simulation.Repository for tests.  Seed
// it through Add or the Simulations map; set Err to force every call to fail.
type MockSimulationRepo struct {
	mu          sync.Mutex
	Simulations map[string]*simulation.Simulation
	Err         error
	GetCalls    int
}

// NewMockSimulationRepo creates an empty in-memory repository.
func NewMockSimulationRepo() *MockSimulationRepo {
	return &MockSimulationRepo{Simulations: make(map[string]*simulation.Simulation)}
}

var _ simulation.Repository = (*MockSimulationRepo)(nil)

// Add seeds a simulation.
func (m *MockSimulationRepo) Add(sim *simulation.Simulation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Simulations[sim.ID] = sim
}

func (m *MockSimulationRepo) GetByID(ctx context.Context, id string) (*simulation.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	sim, ok := m.Simulations[id]
	if !ok {
		return nil, errors.New(errors.CodeSimulationNotFound, "simulation not found").WithDetail("id=" + id)
	}
	return sim, nil
}

func (m *MockSimulationRepo) List(ctx context.Context, p common.Pagination) ([]*simulation.Simulation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	out := make([]*simulation.Simulation, 0, len(m.Simulations))
	for _, sim := range m.Simulations {
		out = append(out, sim)
	}
	return out, int64(len(out)), nil
}

func (m *MockSimulationRepo) Create(ctx context.Context, sim *simulation.Simulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Simulations[sim.ID] = sim
	return nil
}

func (m *MockSimulationRepo) UpdateStatus(ctx context.Context, id string, status simulation.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	sim, ok := m.Simulations[id]
	if !ok {
		return errors.New(errors.CodeSimulationNotFound, "simulation not found")
	}
	sim.Status = status
	return nil
}
