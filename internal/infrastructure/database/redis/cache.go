package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

// ErrCacheMiss marks an absent key.  Callers treat it as "compute and fill",
// never as a failure.
var ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

// Cache is the read-through JSON cache used for computed projections.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitterFrac float64
	group      singleflight.Group
}

// CacheOption customizes a cache instance.
type CacheOption func(*redisCache)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// WithDefaultTTL overrides the TTL applied when Set is called with ttl 0.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithJitter sets the TTL jitter fraction.  Zero disables jitter, which
// deterministic tests rely on.
func WithJitter(frac float64) CacheOption {
	return func(c *redisCache) { c.jitterFrac = frac }
}

// NewCache creates a JSON cache over the given client.
func NewCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	c := &redisCache{
		client:     client,
		logger:     log,
		prefix:     "opinionspace:",
		defaultTTL: 15 * time.Minute,
		jitterFrac: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expirations so hot keys don't expire in lockstep.
func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 || c.jitterFrac == 0 {
		return ttl
	}
	jitter := float64(ttl) * c.jitterFrac * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode cached value")
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode value for cache")
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Redis().Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache value")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.Redis().Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache keys")
	}
	return nil
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Redis().Exists(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to check cache key")
	}
	return n > 0, nil
}

// GetOrSet returns the cached value, or runs loader and caches its result.
// Concurrent callers for the same key share one loader run via singleflight.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.IsCode(err, errors.ErrCodeNotFound) {
		c.logger.Warn("Cache read failed, falling through to loader",
			logging.String("key", key), logging.Err(err))
	}

	data, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode loaded value")
		}
		if ttl == 0 {
			ttl = c.defaultTTL
		}
		if err := c.client.Redis().Set(ctx, c.fullKey(key), encoded, c.jitterTTL(ttl)).Err(); err != nil {
			// A failed write keeps the value usable; next caller recomputes.
			c.logger.Warn("Failed to backfill cache",
				logging.String("key", key), logging.Err(err))
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data.([]byte), dest)
}

// DeleteByPrefix removes all keys under prefix using incremental SCAN, never
// the blocking KEYS command.
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	pattern := c.fullKey(prefix) + "*"
	iter := c.client.Redis().Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			n, err := c.client.Redis().Del(ctx, batch...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete scanned keys")
			}
			deleted += n
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "scan failed")
	}
	if len(batch) > 0 {
		n, err := c.client.Redis().Del(ctx, batch...).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete scanned keys")
		}
		deleted += n
	}
	return deleted, nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
