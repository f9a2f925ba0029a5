// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ErrStoreNotConfigured is returned by RequireStore when DATABASE_URL is unset.
var ErrStoreNotConfigured = errors.New("DATABASE_URL is not set")

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Database (PostgreSQL). Only needed by commands that touch the store.
	DatabaseURL       string `env:"DATABASE_URL"`
	DBConnectAttempts int    `env:"DB_CONNECT_ATTEMPTS" envDefault:"3"`

	// Cache (Redis). Empty runs without a cache.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Record cache TTLs. LOCAL_CACHE_TTL=0 disables the in-process tier.
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	LocalCacheTTL time.Duration `env:"LOCAL_CACHE_TTL" envDefault:"30s"`

	// Environment segment of issued keys: live or test.
	KeyEnv string `env:"KEY_ENV" envDefault:"test"`

	// Upper bound for a single CLI command.
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasCache reports whether a Redis cache is configured.
func (c *Config) HasCache() bool {
	return c.RedisURL != ""
}

// RequireStore returns an error unless a database is configured.
func (c *Config) RequireStore() error {
	if c.DatabaseURL == "" {
		return ErrStoreNotConfigured
	}
	return nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if c.KeyEnv != "live" && c.KeyEnv != "test" {
		return fmt.Errorf("KEY_ENV must be live or test, got %q", c.KeyEnv)
	}
	if c.DBConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1, got %d", c.DBConnectAttempts)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.LocalCacheTTL < 0 {
		return fmt.Errorf("LOCAL_CACHE_TTL must not be negative, got %s", c.LocalCacheTTL)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("COMMAND_TIMEOUT must be positive, got %s", c.CommandTimeout)
	}
	return nil
}

// Load reads .env and .env.local when present, then parses environment
// variables. Variables already set in the environment win over both files.
func Load() (*Config, error) {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return Parse()
}

// Parse builds a Config from the process environment alone.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
