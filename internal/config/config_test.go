package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	assert.True(t, cfg.UsesDevSecret())
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("TEAMSCORE_ADDR", ":9090")
	t.Setenv("TEAMSCORE_STORAGE_TYPE", "redis")
	t.Setenv("TEAMSCORE_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("TEAMSCORE_TOKEN_TTL", "12h")
	t.Setenv("TEAMSCORE_WRITE_BURST", "5")
	t.Setenv("TEAMSCORE_WRITE_RATE_PER_SECOND", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.WriteBurst)
	assert.InDelta(t, 2.5, cfg.WriteRatePerSecond, 1e-9)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teamscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
log_level: debug
jwt_secret: "a-file-secret-that-is-long-enough-for-hs256"
seed_file: /etc/teamscore/seed.yaml
hub_cleanup_interval: 30s
`), 0o600))

	t.Setenv(FileEnv, path)
	t.Setenv("TEAMSCORE_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Addr, "env wins over file")
	assert.Equal(t, "/etc/teamscore/seed.yaml", cfg.SeedFile)
	assert.Equal(t, 30*time.Second, cfg.HubCleanupInterval)
	assert.False(t, cfg.UsesDevSecret())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.ErrorIs(t, err, ErrLoadConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"unknown storage", func(c *Config) { c.StorageType = "postgres" }},
		{"redis without url", func(c *Config) { c.StorageType = StorageRedis; c.RedisURL = "" }},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"zero burst", func(c *Config) { c.WriteBurst = 0 }},
		{"zero cleanup interval", func(c *Config) { c.HubCleanupInterval = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, Default().Validate())
}
