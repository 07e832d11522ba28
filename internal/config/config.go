// Package config provides configuration management for DagFlow.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Engine   EngineConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL             string
	MaxConnections  int
	MinConnections  int
	MaxIdleTime     time.Duration
	MaxConnLifetime time.Duration
	Debug           bool
}

// RedisConfig holds Redis-related configuration. Disabled unless Enabled is
// set; the in-memory result cache is the default.
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
	PoolSize int
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// EngineConfig holds the options the execution engine recognises.
type EngineConfig struct {
	WorkerCount      int
	CacheEnabled     bool
	CacheMaxEntries  int
	CacheDefaultTTL  time.Duration
	ExecutionTimeout time.Duration
	ContinueOnError  bool
}

// Load loads the configuration from environment variables.
func Load() (*Config, error) {
	godotenv.Load()

	defaultWorkers := runtime.NumCPU()
	if defaultWorkers < 1 {
		defaultWorkers = 1
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("DAGFLOW_PORT", 8484),
			Host:            getEnv("DAGFLOW_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("DAGFLOW_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("DAGFLOW_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("DAGFLOW_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DAGFLOW_DATABASE_URL", ""),
			MaxConnections:  getEnvAsInt("DAGFLOW_DB_MAX_CONNECTIONS", 20),
			MinConnections:  getEnvAsInt("DAGFLOW_DB_MIN_CONNECTIONS", 5),
			MaxIdleTime:     getEnvAsDuration("DAGFLOW_DB_MAX_IDLE_TIME", 30*time.Minute),
			MaxConnLifetime: getEnvAsDuration("DAGFLOW_DB_MAX_CONN_LIFETIME", time.Hour),
			Debug:           getEnvAsBool("DAGFLOW_DB_DEBUG", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("DAGFLOW_REDIS_ENABLED", false),
			URL:      getEnv("DAGFLOW_REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("DAGFLOW_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("DAGFLOW_REDIS_DB", 0),
			PoolSize: getEnvAsInt("DAGFLOW_REDIS_POOL_SIZE", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("DAGFLOW_LOG_LEVEL", "info"),
			Format: getEnv("DAGFLOW_LOG_FORMAT", "json"),
		},
		Engine: EngineConfig{
			WorkerCount:      getEnvAsInt("DAGFLOW_WORKER_COUNT", defaultWorkers),
			CacheEnabled:     getEnvAsBool("DAGFLOW_CACHE_ENABLED", true),
			CacheMaxEntries:  getEnvAsInt("DAGFLOW_CACHE_MAX_ENTRIES", 1000),
			CacheDefaultTTL:  getEnvAsDuration("DAGFLOW_CACHE_DEFAULT_TTL", time.Hour),
			ExecutionTimeout: getEnvAsDuration("DAGFLOW_EXECUTION_TIMEOUT", 0),
			ContinueOnError:  getEnvAsBool("DAGFLOW_CONTINUE_ON_ERROR", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.Engine.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	if c.Engine.CacheMaxEntries < 1 {
		return fmt.Errorf("cache max entries must be at least 1")
	}

	if c.Database.URL != "" {
		if c.Database.MaxConnections < 1 {
			return fmt.Errorf("database max connections must be at least 1")
		}
		if c.Database.MinConnections > c.Database.MaxConnections {
			return fmt.Errorf("database min connections cannot exceed max connections")
		}
	}

	return nil
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
