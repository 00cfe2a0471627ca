package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/civitas-ai/opinionspace/internal/config"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes to Kafka.  Messages are keyed by
// simulation ID so all events of one simulation land on the same partition in
// order.
type Producer struct {
	writer WriterInterface
	source string
	logger logging.Logger
	closed atomic.Bool

	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer creates a producer over a hash-balanced kafka.Writer.
func NewProducer(cfg config.KafkaConfig, source string, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.NewValidation("kafka brokers required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, source: source, logger: log.Named("kafka-producer")}, nil
}

// NewProducerWithWriter wraps an existing writer (for tests).
func NewProducerWithWriter(w WriterInterface, source string, log logging.Logger) *Producer {
	return &Producer{writer: w, source: source, logger: log}
}

// PublishEvent wraps payload in an envelope and publishes it to topic, keyed
// by key.
func (p *Producer) PublishEvent(ctx context.Context, topic, eventType, key string, payload interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if topic == "" {
		return errors.NewValidation("topic required")
	}

	env, err := NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "source_service", Value: []byte(p.source)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to publish event")
	}
	p.sent.Add(1)

	p.logger.Debug("Event published",
		logging.String("topic", topic),
		logging.String("event_type", eventType),
		logging.String("key", key),
		logging.Duration("latency", time.Since(start)),
	)
	return nil
}

// PublishProjectionComputed is a convenience wrapper for the most common
// event.
func (p *Producer) PublishProjectionComputed(ctx context.Context, payload ProjectionComputedPayload) error {
	return p.PublishEvent(ctx, TopicProjectionComputed, EventProjectionComputed, payload.SimulationID, payload)
}

// Sent reports successfully published messages.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Failed reports failed publish attempts.
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close shuts the producer down.  Safe to call more than once.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}
