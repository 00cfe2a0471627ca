package opinionspace

import (
	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
)

// Options controls optional parts of a projection.
type Options struct {
	// IncludeBridges adds the pairwise persuasion-bridge edge list to the
	// projection.  Cluster summaries and positions are always computed.
	IncludeBridges bool
}

// Engine sequences aggregation, similarity scoring, layout, and bridge
// analysis into a single projection.  The zero value is not usable; construct
// with NewEngine.  An Engine holds only immutable configuration, so a single
// instance is safe for concurrent use across simulations.
type Engine struct {
	layoutRounds int
}

// EngineOption customises engine construction.
type EngineOption func(*Engine)

// WithLayoutRounds overrides the number of layout relaxation rounds.  Meant
// for tests; production uses the default.
func WithLayoutRounds(rounds int) EngineOption {
	return func(e *Engine) { e.layoutRounds = rounds }
}

// NewEngine constructs a projection engine with default layout settings.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{layoutRounds: DefaultLayoutRounds}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Project computes the full derived view of a simulation snapshot: one
// summary per cluster (in input cluster order) with 3-D positions attached,
// plus the bridge edge list when requested.
//
// Project is a pure function over the snapshot: it reads but never mutates
// its input, performs no I/O, and returns identical output for identical
// input.
func (e *Engine) Project(sim *simulation.Simulation, opts Options) *Projection {
	clusters := make([]ClusterSummary, len(sim.Clusters))
	for i, c := range sim.Clusters {
		clusters[i] = Aggregate(c, sim.Agents, sim.Results)
	}

	matrix := SimilarityMatrix(clusters)
	positions := ComputePositions(clusters, matrix, e.layoutRounds)
	for i := range clusters {
		p := positions[i]
		clusters[i].Position = &p
	}

	proj := &Projection{
		Metadata: Metadata{
			SimulationID:  sim.ID,
			Title:         sim.Title,
			Scenario:      sim.Scenario,
			TotalAgents:   sim.TotalAgents(),
			TotalClusters: len(clusters),
			CreatedAt:     sim.CreatedAt,
		},
		Clusters: clusters,
	}
	if opts.IncludeBridges {
		proj.Bridges = AnalyzeBridges(clusters)
	}
	return proj
}
