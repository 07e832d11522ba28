package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8484, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Engine.CacheEnabled)
	assert.Equal(t, 1000, cfg.Engine.CacheMaxEntries)
	assert.Equal(t, time.Hour, cfg.Engine.CacheDefaultTTL)
	assert.Equal(t, time.Duration(0), cfg.Engine.ExecutionTimeout)
	assert.False(t, cfg.Engine.ContinueOnError)
	assert.GreaterOrEqual(t, cfg.Engine.WorkerCount, 1)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DAGFLOW_PORT", "9090")
	t.Setenv("DAGFLOW_LOG_LEVEL", "debug")
	t.Setenv("DAGFLOW_LOG_FORMAT", "text")
	t.Setenv("DAGFLOW_WORKER_COUNT", "3")
	t.Setenv("DAGFLOW_CACHE_ENABLED", "false")
	t.Setenv("DAGFLOW_CACHE_DEFAULT_TTL", "10m")
	t.Setenv("DAGFLOW_EXECUTION_TIMEOUT", "90s")
	t.Setenv("DAGFLOW_CONTINUE_ON_ERROR", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Engine.WorkerCount)
	assert.False(t, cfg.Engine.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Engine.CacheDefaultTTL)
	assert.Equal(t, 90*time.Second, cfg.Engine.ExecutionTimeout)
	assert.True(t, cfg.Engine.ContinueOnError)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DAGFLOW_PORT", "not-a-number")
	t.Setenv("DAGFLOW_CACHE_DEFAULT_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8484, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Engine.CacheDefaultTTL)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad worker count", func(c *Config) { c.Engine.WorkerCount = 0 }},
		{"bad cache size", func(c *Config) { c.Engine.CacheMaxEntries = 0 }},
		{
			"db min above max",
			func(c *Config) {
				c.Database.URL = "postgres://localhost/db"
				c.Database.MinConnections = 10
				c.Database.MaxConnections = 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
