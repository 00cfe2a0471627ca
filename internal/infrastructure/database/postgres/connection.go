// Package postgres manages the PostgreSQL connection pool and schema
// migrations for the opinionspace platform.
package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civitas-ai/opinionspace/internal/config"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

// Connection wraps a pgx connection pool with lifecycle management.
type Connection struct {
	pool   *pgxpool.Pool
	cfg    config.DatabaseConfig
	logger logging.Logger
	once   sync.Once
}

// NewConnection establishes a pooled connection to PostgreSQL and verifies it
// with a ping.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid database configuration")
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("Connected to PostgreSQL database",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)

	return &Connection{pool: pool, cfg: cfg, logger: log}, nil
}

// NewConnectionWithPool wraps an existing pool (for tests).
func NewConnectionWithPool(pool *pgxpool.Pool, log logging.Logger) *Connection {
	return &Connection{pool: pool, logger: log}
}

// Pool returns the underlying pgx pool.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

// HealthCheck verifies the connection and warns when the pool runs hot.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}

	stats := c.pool.Stat()
	if total := stats.TotalConns(); total > 0 {
		usage := float64(stats.AcquiredConns()) / float64(total)
		if usage > 0.8 {
			c.logger.Warn("High database connection pool usage",
				logging.Int("acquired", int(stats.AcquiredConns())),
				logging.Int("total", int(total)),
				logging.Float64("usage", usage),
			)
		}
	}
	return nil
}

// Close releases the pool.  Safe to call more than once.
func (c *Connection) Close() {
	c.once.Do(func() {
		c.pool.Close()
		c.logger.Info("Closed PostgreSQL connection pool")
	})
}
