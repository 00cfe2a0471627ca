// The worker command consumes simulation lifecycle events and keeps the
// projection cache warm: when an upstream run completes, stale cached
// projections are dropped and both variants are recomputed ahead of the first
// read.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/civitas-ai/opinionspace/internal/application/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/config"
	domain "github.com/civitas-ai/opinionspace/internal/domain/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/database/postgres"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/database/postgres/repositories"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/database/redis"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/messaging/kafka"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
)

const sourceService = "opinionspace-worker"

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment-only when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for the worker")
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()
	repo := repositories.NewSimulationRepository(conn.Pool(), logger)

	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix+":"),
		redis.WithDefaultTTL(cfg.Engine.CacheTTL))

	service := opinionspace.NewProjectionService(repo, logger,
		opinionspace.WithCache(cache, cfg.Engine.CacheTTL),
		opinionspace.WithEngine(domain.NewEngine(domain.WithLayoutRounds(cfg.Engine.LayoutRounds))))

	deadLetter, err := kafka.NewProducer(cfg.Kafka, sourceService, logger)
	if err != nil {
		return fmt.Errorf("init dead-letter producer: %w", err)
	}
	defer deadLetter.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka, []string{kafka.TopicSimulationCompleted}, logger)
	if err != nil {
		return fmt.Errorf("init consumer: %w", err)
	}
	consumer.WithDeadLetter(deadLetter)
	consumer.Handle(kafka.EventSimulationCompleted, warmProjections(service, logger))

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	logger.Info("Worker consuming", logging.String("topic", kafka.TopicSimulationCompleted))

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	return consumer.Stop()
}

// warmProjections invalidates any stale cached projections for the completed
// simulation and recomputes both variants so the first dashboard load after a
// run is a cache hit.
func warmProjections(service opinionspace.ProjectionService, logger logging.Logger) kafka.EventHandler {
	return func(ctx context.Context, env *kafka.EventEnvelope) error {
		var payload kafka.SimulationCompletedPayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}
		if err := service.InvalidateProjection(ctx, payload.SimulationID); err != nil {
			return err
		}
		for _, includeBridges := range []bool{false, true} {
			if _, err := service.GetProjection(ctx, payload.SimulationID, domain.Options{IncludeBridges: includeBridges}); err != nil {
				return err
			}
		}
		logger.Info("Projections warmed",
			logging.String("simulation_id", payload.SimulationID),
			logging.Int("total_agents", payload.TotalAgents))
		return nil
	}
}
