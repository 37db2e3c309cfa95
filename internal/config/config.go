// Package config loads process configuration from defaults, an optional YAML
// file and TEAMSCORE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

const (
	envPrefix = "TEAMSCORE_"
	// FileEnv names the variable holding an optional YAML config path
	FileEnv = envPrefix + "CONFIG"

	// minSecretLength is the shortest accepted HS256 signing secret
	minSecretLength = 32

	// DevSecret signs tokens when no secret is configured. Never use it in production.
	DevSecret = "teamscore-development-secret-do-not-deploy"
)

// Errors
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080"
	Addr string `koanf:"addr"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `koanf:"log_level"`

	// StorageType selects the backend: memory or redis
	StorageType string `koanf:"storage_type"`
	RedisURL    string `koanf:"redis_url"`

	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// SeedFile is an optional YAML file loaded into storage at startup
	SeedFile string `koanf:"seed_file"`

	// WriteRatePerSecond and WriteBurst bound each caller's write requests
	WriteRatePerSecond float64 `koanf:"write_rate_per_second"`
	WriteBurst         int     `koanf:"write_burst"`

	// HubCleanupInterval is how often empty rooms are reclaimed
	HubCleanupInterval time.Duration `koanf:"hub_cleanup_interval"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Addr:               ":8080",
		LogLevel:           "info",
		StorageType:        StorageMemory,
		RedisURL:           "redis://localhost:6379",
		JWTSecret:          DevSecret,
		TokenTTL:           7 * 24 * time.Hour,
		WriteRatePerSecond: 10,
		WriteBurst:         20,
		HubCleanupInterval: time.Minute,
		ShutdownTimeout:    30 * time.Second,
	}
}

// Load builds a Config by layering, from low to high precedence: defaults,
// the YAML file named by TEAMSCORE_CONFIG, then TEAMSCORE_* variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// TEAMSCORE_REDIS_URL -> redis_url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StorageType != StorageMemory && c.StorageType != StorageRedis:
		return fmt.Errorf("%w: storage_type must be %q or %q, got %q", ErrInvalidConfig, StorageMemory, StorageRedis, c.StorageType)
	case c.StorageType == StorageRedis && c.RedisURL == "":
		return fmt.Errorf("%w: redis_url is required for redis storage", ErrInvalidConfig)
	case len(c.JWTSecret) < minSecretLength:
		return fmt.Errorf("%w: jwt_secret must be at least %d bytes", ErrInvalidConfig, minSecretLength)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	case c.WriteRatePerSecond <= 0 || c.WriteBurst <= 0:
		return fmt.Errorf("%w: write_rate_per_second and write_burst must be positive", ErrInvalidConfig)
	case c.HubCleanupInterval <= 0:
		return fmt.Errorf("%w: hub_cleanup_interval must be positive", ErrInvalidConfig)
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// UsesDevSecret reports whether tokens are signed with the built-in secret
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == DevSecret
}
