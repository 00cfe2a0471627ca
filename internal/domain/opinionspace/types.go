// Package opinionspace implements the opinion-space projection engine: it
// reduces raw per-agent simulation results to per-cluster statistical
// summaries, scores pairwise cluster similarity, lays the clusters out in 3-D
// space by mutual similarity, and derives ranked persuasion bridges between
// cluster pairs.
//
// The whole package is pure computation: it performs no I/O, holds no state
// between invocations, and produces bit-identical output for identical input.
// Field names on the output types follow the established wire format consumed
// by the visualisation client (camelCase JSON).
package opinionspace

import "time"

// Position is a point in the 3-D opinion space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AgentSample is one representative agent-level record carried on a summary.
type AgentSample struct {
	AgentID  string   `json:"agentId"`
	Name     string   `json:"name"`
	Score    *float64 `json:"score,omitempty"`
	Emotion  string   `json:"emotion,omitempty"`
	Response string   `json:"response,omitempty"`
}

// Narratives holds the three free-text analysis summaries for a cluster.
type Narratives struct {
	Belief     string `json:"belief"`
	Expression string `json:"expression"`
	Action     string `json:"action"`
}

// ClusterSummary is the derived statistical view of one opinion cluster.
// Invariants: AvgScore and Cohesion are in [0,100]; Keywords holds at most
// maxKeywords entries ordered by descending frequency; AgentSamples at most
// maxAgentSamples; Verbatims at most maxVerbatims, in encounter order.
type ClusterSummary struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	Weight          float64       `json:"weight"`
	AgentCount      int           `json:"agentCount"`
	AvgScore        float64       `json:"avgScore"`
	Cohesion        float64       `json:"cohesion"`
	DominantEmotion string        `json:"dominantEmotion"`
	Keywords        []string      `json:"keywords"`
	AgentSamples    []AgentSample `json:"agentSamples"`
	Verbatims       []string      `json:"verbatims"`
	Analysis        Narratives    `json:"analysis"`
	Position        *Position     `json:"position,omitempty"`
}

// BridgeType classifies the persuasive strength of an opinion bridge.
type BridgeType string

const (
	BridgeStrong   BridgeType = "strong"
	BridgeModerate BridgeType = "moderate"
	BridgeWeak     BridgeType = "weak"
)

// OpinionBridge describes how persuadable one cluster is relative to another.
// One bridge exists per unordered cluster pair; SourceID always precedes
// TargetID in the input cluster order.
type OpinionBridge struct {
	SourceID         string     `json:"sourceId"`
	TargetID         string     `json:"targetId"`
	Strength         float64    `json:"strength"`
	SharedKeywords   []string   `json:"sharedKeywords"`
	SharedEmotions   []string   `json:"sharedEmotions"`
	ScoreDifference  float64    `json:"scoreDifference"`
	BridgeType       BridgeType `json:"bridgeType"`
	PersuasionVector string     `json:"persuasionVector"`
}

// Metadata carries simulation-level identity and counts on a projection.
type Metadata struct {
	SimulationID  string    `json:"simulationId"`
	Title         string    `json:"title"`
	Scenario      string    `json:"scenario,omitempty"`
	TotalAgents   int       `json:"totalAgents"`
	TotalClusters int       `json:"totalClusters"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Projection is the complete derived view returned by the engine.
type Projection struct {
	Metadata Metadata         `json:"metadata"`
	Clusters []ClusterSummary `json:"clusters"`
	Bridges  []OpinionBridge  `json:"bridges,omitempty"`
}
