package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/civitas-ai/opinionspace/internal/config"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

var (
	// ErrAlreadyRunning is returned when Start is called twice.
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// EventHandler processes one decoded event envelope.  A non-nil error
// triggers in-process retries; once the retry budget is exhausted the message
// is dead-lettered and committed.
type EventHandler func(ctx context.Context, env *EventEnvelope) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads event envelopes from a topic group and dispatches them by
// event type.
type Consumer struct {
	reader     ReaderInterface
	logger     logging.Logger
	deadLetter *Producer
	maxRetries int

	mu       sync.RWMutex
	handlers map[string]EventHandler

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	consumed atomic.Int64
	failed   atomic.Int64
}

// NewConsumer creates a consumer group reader over the given topics.
func NewConsumer(cfg config.KafkaConfig, topics []string, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.NewValidation("kafka brokers required")
	}
	if len(topics) == 0 {
		return nil, errors.NewValidation("at least one topic required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
		MaxWait:     time.Second,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{
		reader:     reader,
		logger:     log.Named("kafka-consumer"),
		maxRetries: cfg.MaxRetries,
		handlers:   make(map[string]EventHandler),
	}, nil
}

// NewConsumerWithReader wraps an existing reader (for tests).
func NewConsumerWithReader(r ReaderInterface, maxRetries int, log logging.Logger) *Consumer {
	return &Consumer{
		reader:     r,
		logger:     log,
		maxRetries: maxRetries,
		handlers:   make(map[string]EventHandler),
	}
}

// WithDeadLetter routes exhausted messages to the dead-letter topic through
// the given producer.
func (c *Consumer) WithDeadLetter(p *Producer) *Consumer {
	c.deadLetter = p
	return c
}

// Handle registers a handler for an event type.  Events without a handler are
// committed and skipped.
func (c *Consumer) Handle(eventType string, h EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = h
}

// Start begins the fetch loop.  It returns immediately; processing happens on
// a background goroutine until Stop or context cancellation.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(runCtx)
	}()
	return nil
}

func (c *Consumer) run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch message", logging.Err(err))
			continue
		}
		c.consumed.Add(1)
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	env, err := ParseEnvelope(msg.Value)
	if err != nil {
		// Undecodable messages can never succeed; dead-letter and move on.
		c.logger.Error("Dropping undecodable message",
			logging.String("topic", msg.Topic), logging.Err(err))
		c.sendToDeadLetter(ctx, msg, err)
		c.commit(ctx, msg)
		return
	}

	c.mu.RLock()
	handler, ok := c.handlers[env.EventType]
	c.mu.RUnlock()
	if !ok {
		c.commit(ctx, msg)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
		if lastErr = handler(ctx, env); lastErr == nil {
			c.commit(ctx, msg)
			return
		}
	}

	c.failed.Add(1)
	c.logger.Error("Handler exhausted retries",
		logging.String("event_type", env.EventType),
		logging.String("event_id", env.EventID),
		logging.Err(lastErr),
	)
	c.sendToDeadLetter(ctx, msg, lastErr)
	c.commit(ctx, msg)
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.deadLetter == nil {
		return
	}
	payload := map[string]string{
		"original_topic": msg.Topic,
		"error":          cause.Error(),
		"value":          string(msg.Value),
	}
	if err := c.deadLetter.PublishEvent(ctx, TopicDeadLetter, "dead_letter", string(msg.Key), payload); err != nil {
		c.logger.Error("Failed to publish to dead-letter topic", logging.Err(err))
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", logging.Err(err))
	}
}

// Consumed reports fetched message count.
func (c *Consumer) Consumed() int64 { return c.consumed.Load() }

// Failed reports messages whose handler exhausted all retries.
func (c *Consumer) Failed() int64 { return c.failed.Load() }

// Stop cancels the fetch loop and closes the reader.
func (c *Consumer) Stop() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("Kafka consumer stopped",
		logging.Int64("consumed", c.consumed.Load()),
		logging.Int64("failed", c.failed.Load()),
	)
	return err
}
