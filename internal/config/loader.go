package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "OPSPACE"

// Load reads configuration from the given file (YAML), overlays environment
// variables with the OPSPACE_ prefix, applies defaults, and validates the
// result.  An empty path loads from environment and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// bindEnvKeys registers every known key with viper so environment variables
// are visible to Unmarshal even when no config file mentions them.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.read_timeout", "server.write_timeout",
		"server.idle_timeout", "server.shutdown_timeout",
		"server.rate_limit_rps", "server.cors_origins",
		"database.host", "database.port", "database.user",
		"database.password", "database.db_name", "database.ssl_mode",
		"database.max_conns", "database.min_conns",
		"database.conn_max_lifetime", "database.conn_max_idle_time",
		"database.migration_path",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout",
		"redis.write_timeout", "redis.default_ttl", "redis.key_prefix",
		"kafka.brokers", "kafka.group_id", "kafka.batch_size",
		"kafka.batch_timeout", "kafka.write_timeout", "kafka.max_retries",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
		"metrics.enabled", "metrics.path",
		"engine.layout_rounds", "engine.cache_ttl",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// LoadFromEnv builds a configuration purely from environment variables and
// defaults.  Useful for containerized deployments without a config file.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// MustLoad is Load that panics on failure.  Intended for main functions.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watcher re-reads a configuration file when it changes on disk and delivers
// each valid new Config to the registered callback.  Invalid intermediate
// states are skipped so a half-written file never reaches the application.
type Watcher struct {
	path     string
	onChange func(*Config)
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	current *Config
	done    chan struct{}
}

// Watch starts watching path and invokes onChange with every valid reload.
// The initial load must succeed; later parse or validation failures keep the
// previous configuration.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files atomically
	// via rename, which drops a file-level watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fw,
		current:  cfg,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Current returns the most recently loaded valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	var reload <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: editors emit bursts of events per save.
			reload = time.After(200 * time.Millisecond)
		case <-reload:
			reload = nil
			cfg, err := Load(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
