// Package redis provides the Redis client and the projection cache built on
// top of it.
package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/civitas-ai/opinionspace/internal/config"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

// Client wraps a standalone go-redis client with lifecycle management.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis connection failed")
	}

	log.Info("Connected to Redis", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return &Client{rdb: rdb, logger: log}, nil
}

// NewClientWithRedis wraps an existing go-redis client (for tests).
func NewClientWithRedis(rdb *redis.Client, log logging.Logger) *Client {
	return &Client{rdb: rdb, logger: log}
}

// Redis exposes the underlying go-redis client.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New(errors.ErrCodeCacheError, "redis client is closed")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis ping failed")
	}
	return nil
}

// Close shuts the client down.  Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rdb.Close()
	if err != nil {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
		return err
	}
	c.logger.Info("Closed Redis client")
	return nil
}
