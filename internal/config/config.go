// Package config loads runtime settings for the bizdesk CLI from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Backend kinds accepted in BIZDESK_BACKEND.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config aggregates every setting the CLI needs.
type Config struct {
	Backend string `env:"BIZDESK_BACKEND" envDefault:"file"`
	DataDir string `env:"BIZDESK_DATA_DIR" envDefault:"./data"`

	// Empty paths resolve under DataDir.
	BoltPath   string `env:"BIZDESK_BOLT_PATH"`
	SQLitePath string `env:"BIZDESK_SQLITE_PATH"`

	MongoURI      string `env:"BIZDESK_MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"BIZDESK_MONGODB_DATABASE" envDefault:"bizdesk"`

	RedisURL    string `env:"BIZDESK_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix string `env:"BIZDESK_REDIS_PREFIX" envDefault:"bizdesk:"`

	// UsersFile is a YAML user list. Empty means the built-in demo users.
	UsersFile string `env:"BIZDESK_USERS_FILE"`

	SyncDir      string        `env:"BIZDESK_SYNC_DIR"`
	SyncInterval time.Duration `env:"BIZDESK_SYNC_INTERVAL" envDefault:"5m"`

	ExportRoot  string   `env:"BIZDESK_EXPORT_ROOT" envDefault:"."`
	ExportFiles []string `env:"BIZDESK_EXPORT_FILES" envSeparator:"," envDefault:"go.mod,README.md,.env.example"`

	LogLevel    string `env:"BIZDESK_LOG_LEVEL" envDefault:"warn"`
	LogEncoding string `env:"BIZDESK_LOG_ENCODING" envDefault:"console"`
}

// Load reads .env when present, then parses BIZDESK_* variables.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return parse(env.Options{})
}

// FromMap parses settings from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BoltPath == "" {
		cfg.BoltPath = filepath.Join(cfg.DataDir, "bizdesk.db")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "bizdesk.sqlite")
	}
	return cfg, nil
}

// Validate rejects unknown backend kinds and non-positive intervals.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendBolt, BackendSQLite, BackendMongo, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("config: sync interval must be positive, got %s", c.SyncInterval)
	}
	return nil
}
