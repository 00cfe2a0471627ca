// The apiserver command runs the opinionspace HTTP API: simulation reads,
// opinion-space projections, health probes, and Prometheus metrics.
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
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/civitas-ai/opinionspace/internal/interfaces/http"
	"github.com/civitas-ai/opinionspace/internal/interfaces/http/handlers"
	"github.com/civitas-ai/opinionspace/internal/interfaces/http/middleware"
)

const sourceService = "opinionspace-apiserver"

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment-only when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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
	logger = logger.Named("apiserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: migrations first, then the pool.
	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()
	repo := repositories.NewSimulationRepository(conn.Pool(), logger)

	// Redis is optional; the service computes on every request without it.
	var cache redis.Cache
	pingers := map[string]handlers.Pinger{
		"postgres": handlers.PingerFunc(conn.HealthCheck),
	}
	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, projection cache disabled", logging.Err(err))
	} else {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix+":"),
			redis.WithDefaultTTL(cfg.Engine.CacheTTL))
		pingers["redis"] = handlers.PingerFunc(redisClient.Ping)
	}

	// Kafka is optional for the read path; events are best effort.
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka, sourceService, logger)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer producer.Close()
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "opinionspace",
		Subsystem:            "api",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	svcOpts := []opinionspace.ServiceOption{
		opinionspace.WithMetrics(metrics),
		opinionspace.WithEngine(domain.NewEngine(domain.WithLayoutRounds(cfg.Engine.LayoutRounds))),
	}
	if cache != nil {
		svcOpts = append(svcOpts, opinionspace.WithCache(cache, cfg.Engine.CacheTTL))
	}
	if producer != nil {
		svcOpts = append(svcOpts, opinionspace.WithPublisher(producer))
	}
	service := opinionspace.NewProjectionService(repo, logger, svcOpts...)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.Server.CORSOrigins
	rateCfg := middleware.DefaultRateLimitConfig()
	if cfg.Server.RateLimitRPS > 0 {
		rateCfg.RequestsPerSecond = float64(cfg.Server.RateLimitRPS)
		rateCfg.BurstSize = cfg.Server.RateLimitRPS * 2
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		SimulationHandler: handlers.NewSimulationHandler(service, logger),
		ProjectionHandler: handlers.NewProjectionHandler(service, logger),
		HealthHandler:     handlers.NewHealthHandler(pingers, logger),
		Logger:            logger,
		MetricsCollector:  collector,
		CORS:              &corsCfg,
		RateLimit:         &rateCfg,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	return server.Stop(context.Background())
}
