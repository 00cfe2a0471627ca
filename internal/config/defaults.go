package config

import "time"

// Default values applied when a field is absent from the config file and
// environment.
const (
	DefaultServerPort          = 8080
	DefaultReadTimeout         = 15 * time.Second
	DefaultWriteTimeout        = 30 * time.Second
	DefaultIdleTimeout         = 60 * time.Second
	DefaultShutdownTimeout     = 10 * time.Second
	DefaultRateLimitRPS        = 100
	DefaultDatabasePort        = 5432
	DefaultDatabaseSSLMode     = "disable"
	DefaultDatabaseMaxConns    = 10
	DefaultDatabaseMinConns    = 2
	DefaultConnMaxLifetime     = time.Hour
	DefaultConnMaxIdleTime     = 30 * time.Minute
	DefaultMigrationPath       = "migrations"
	DefaultRedisAddr           = "localhost:6379"
	DefaultRedisPoolSize       = 10
	DefaultRedisDialTimeout    = 5 * time.Second
	DefaultRedisReadTimeout    = 3 * time.Second
	DefaultRedisWriteTimeout   = 3 * time.Second
	DefaultRedisTTL            = 15 * time.Minute
	DefaultRedisKeyPrefix      = "opinionspace"
	DefaultKafkaGroupID        = "opinionspace-workers"
	DefaultKafkaBatchSize      = 100
	DefaultKafkaBatchTimeout   = time.Second
	DefaultKafkaWriteTimeout   = 10 * time.Second
	DefaultKafkaMaxRetries     = 3
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
	DefaultMetricsPath         = "/metrics"
	DefaultEngineLayoutRounds  = 50
	DefaultProjectionCacheTTL  = 15 * time.Minute
)

// ApplyDefaults fills zero-valued fields in place.  It never overrides a
// value that was set explicitly.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = DefaultRateLimitRPS
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDatabasePort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDatabaseSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultDatabaseMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultDatabaseMinConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = DefaultConnMaxIdleTime
	}
	if c.Database.MigrationPath == "" {
		c.Database.MigrationPath = DefaultMigrationPath
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = DefaultRedisPoolSize
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}
	if c.Redis.DefaultTTL == 0 {
		c.Redis.DefaultTTL = DefaultRedisTTL
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = DefaultKafkaGroupID
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}
	if c.Kafka.MaxRetries == 0 {
		c.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stdout"}
	}
	if len(c.Log.ErrorOutputPaths) == 0 {
		c.Log.ErrorOutputPaths = []string{"stderr"}
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Engine.LayoutRounds == 0 {
		c.Engine.LayoutRounds = DefaultEngineLayoutRounds
	}
	if c.Engine.CacheTTL == 0 {
		c.Engine.CacheTTL = DefaultProjectionCacheTTL
	}
}
