// Package kafka provides the event producer and consumer for the
// opinionspace platform.  Events announce simulation lifecycle transitions
// and finished projections so downstream consumers (cache warmers, exports)
// can react without polling.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/civitas-ai/opinionspace/pkg/errors"
)

// Topic constants.
const (
	TopicSimulationCompleted = "opinionspace.simulation.completed"
	TopicProjectionComputed  = "opinionspace.projection.computed"
	TopicProjectionFailed    = "opinionspace.projection.failed"
	TopicDeadLetter          = "opinionspace.dead_letter"
)

// Event type constants carried in the envelope's event_type field.
const (
	EventSimulationCompleted = "simulation.completed"
	EventProjectionComputed  = "projection.computed"
	EventProjectionFailed    = "projection.failed"
)

// EventEnvelope is the wire format shared by every event.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// SimulationCompletedPayload announces that an upstream run finished and its
// results are persisted.
type SimulationCompletedPayload struct {
	SimulationID string    `json:"simulation_id"`
	Title        string    `json:"title"`
	TotalAgents  int       `json:"total_agents"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ProjectionComputedPayload announces a freshly computed opinion-space
// projection.
type ProjectionComputedPayload struct {
	SimulationID   string    `json:"simulation_id"`
	ClusterCount   int       `json:"cluster_count"`
	BridgeCount    int       `json:"bridge_count"`
	IncludeBridges bool      `json:"include_bridges"`
	DurationMs     int64     `json:"duration_ms"`
	ComputedAt     time.Time `json:"computed_at"`
}

// ProjectionFailedPayload announces a projection that could not be computed.
type ProjectionFailedPayload struct {
	SimulationID string    `json:"simulation_id"`
	Reason       string    `json:"reason"`
	FailedAt     time.Time `json:"failed_at"`
}

// NewEventEnvelope wraps a payload in a versioned envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload")
	}
	return nil
}

// ParseEnvelope decodes a raw message value into an envelope.
func ParseEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal event envelope")
	}
	return &env, nil
}
