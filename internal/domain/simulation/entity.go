// Package simulation defines the persisted simulation aggregate: cluster
// definitions, the agent-membership snapshot, and per-agent reaction results.
// The opinion-space engine consumes these records read-only; persona
// generation and the simulated reactions themselves are produced upstream and
// treated here as opaque data.
package simulation

import (
	"time"

	"github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// Status defines the lifecycle state of a simulation run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Cluster is an opinion-cluster definition configured for a simulation.
type Cluster struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	// Weight is the configured share of the simulated population, 0-100.
	// Informational only; aggregation counts actual members.
	Weight float64 `json:"weight"`
}

// AgentMembership records which cluster a simulated agent was assigned to.
type AgentMembership struct {
	AgentID     string `json:"agent_id"`
	ClusterID   string `json:"cluster_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// AnalysisScores carries the optional richer per-agent sub-scores produced by
// deeper reaction analysis.  Every field is optional; absent fields fall back
// to the cluster's average stance score downstream.
type AnalysisScores struct {
	InnerBelief     *float64 `json:"inner_belief,omitempty"`
	ExpressedBelief *float64 `json:"expressed_belief,omitempty"`
	ActionIntensity *float64 `json:"action_intensity,omitempty"`
}

// Turn is a single round of an agent's simulated reaction.  Only the first
// turn feeds aggregation; later turns are retained for audit.
type Turn struct {
	Round    int             `json:"round"`
	Score    *float64        `json:"score,omitempty"`
	Emotion  string          `json:"emotion,omitempty"`
	Response string          `json:"response,omitempty"`
	Analysis *AnalysisScores `json:"analysis,omitempty"`
}

// AgentResult is the full reaction record of one simulated agent.
type AgentResult struct {
	AgentID     string `json:"agent_id"`
	DisplayName string `json:"display_name,omitempty"`
	ClusterID   string `json:"cluster_id"`
	Turns       []Turn `json:"turns"`
}

// FirstTurn returns the agent's first reaction turn, or nil when the agent
// produced no turns.
func (r *AgentResult) FirstTurn() *Turn {
	if len(r.Turns) == 0 {
		return nil
	}
	return &r.Turns[0]
}

// Simulation is the aggregate root: one simulated-opinion poll run.
type Simulation struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Scenario  string            `json:"scenario,omitempty"`
	Status    Status            `json:"status"`
	Clusters  []Cluster         `json:"clusters"`
	Agents    []AgentMembership `json:"agents,omitempty"`
	Results   []AgentResult     `json:"results,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSimulation creates a pending simulation with the given identity fields.
func NewSimulation(title, scenario string, clusters []Cluster) (*Simulation, error) {
	if title == "" {
		return nil, errors.NewValidation("title cannot be empty")
	}
	if len(clusters) == 0 {
		return nil, errors.NewValidation("at least one cluster is required")
	}
	now := time.Now().UTC()
	return &Simulation{
		ID:        string(common.NewID()),
		Title:     title,
		Scenario:  scenario,
		Status:    StatusPending,
		Clusters:  clusters,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks structural integrity of the aggregate.
func (s *Simulation) Validate() error {
	if s.ID == "" {
		return errors.NewValidation("ID cannot be empty")
	}
	if s.Title == "" {
		return errors.NewValidation("title cannot be empty")
	}
	switch s.Status {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
	default:
		return errors.NewValidation("invalid status: " + string(s.Status))
	}
	seen := make(map[string]struct{}, len(s.Clusters))
	for _, c := range s.Clusters {
		if c.ID == "" {
			return errors.NewValidation("cluster ID cannot be empty")
		}
		if _, dup := seen[c.ID]; dup {
			return errors.NewValidation("duplicate cluster ID: " + c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// ResultsForCluster returns the results belonging to the given cluster, in
// their original order.
func (s *Simulation) ResultsForCluster(clusterID string) []AgentResult {
	var out []AgentResult
	for _, r := range s.Results {
		if r.ClusterID == clusterID {
			out = append(out, r)
		}
	}
	return out
}

// MembersOfCluster returns the membership records for the given cluster.
func (s *Simulation) MembersOfCluster(clusterID string) []AgentMembership {
	var out []AgentMembership
	for _, a := range s.Agents {
		if a.ClusterID == clusterID {
			out = append(out, a)
		}
	}
	return out
}

// TotalAgents reports the population size: the membership snapshot when one
// was recorded, otherwise the number of result records.
func (s *Simulation) TotalAgents() int {
	if len(s.Agents) > 0 {
		return len(s.Agents)
	}
	return len(s.Results)
}
