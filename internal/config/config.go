package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ClassGrid server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Optimizer OptimizerConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// OptimizerConfig points at the external schedule optimizer. CallbackBaseURL
// is this service's own externally-reachable base URL; the optimizer PATCHes
// progress back to it.
type OptimizerConfig struct {
	BaseURL         string
	CallbackBaseURL string
	Timeout         time.Duration
}

// JobsConfig tunes the background reconciliation of stale pending jobs.
type JobsConfig struct {
	StalePendingAfter time.Duration
	ReconcileInterval time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("CLASSGRID_PORT", 8080),
			Env:             envString("CLASSGRID_ENV", "development"),
			RateLimitPerMin: envInt("CLASSGRID_RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Optimizer: OptimizerConfig{
			BaseURL:         os.Getenv("OPTIMIZER_BASE_URL"),
			CallbackBaseURL: os.Getenv("CALLBACK_BASE_URL"),
			Timeout:         envDuration("OPTIMIZER_TIMEOUT", 10*time.Minute),
		},
		Jobs: JobsConfig{
			StalePendingAfter: envDuration("JOBS_STALE_PENDING_AFTER", 2*time.Minute),
			ReconcileInterval: envDuration("JOBS_RECONCILE_INTERVAL", 1*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Optimizer.BaseURL == "" {
		return fmt.Errorf("OPTIMIZER_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Optimizer.BaseURL, "http://") && !strings.HasPrefix(c.Optimizer.BaseURL, "https://") {
		return fmt.Errorf("OPTIMIZER_BASE_URL must start with http:// or https://, got %q", c.Optimizer.BaseURL)
	}

	if c.Optimizer.CallbackBaseURL == "" {
		return fmt.Errorf("CALLBACK_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Optimizer.CallbackBaseURL, "http://") && !strings.HasPrefix(c.Optimizer.CallbackBaseURL, "https://") {
		return fmt.Errorf("CALLBACK_BASE_URL must start with http:// or https://, got %q", c.Optimizer.CallbackBaseURL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
