package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the overlay configuration, loaded from environment
// variables with the LOBBYSIGHT_ prefix
type Config struct {
	// LogPath is the minecraft log file to tail
	LogPath string `env:"LOG_PATH"`
	// APIKey is the stats provider key. It can also arrive at runtime
	// through the log, which overrides this value.
	APIKey string `env:"API_KEY"`

	// Host and Port are the local API listen address
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8180"`

	// StorageType selects the storage backend ("memory" or "redis")
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	// RedisURL is the Redis connection URL when StorageType is "redis"
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// RequestLimit and RequestWindow bound stats provider traffic: at
	// most RequestLimit requests in any RequestWindow span
	RequestLimit  int           `env:"REQUEST_LIMIT" envDefault:"60"`
	RequestWindow time.Duration `env:"REQUEST_WINDOW" envDefault:"1m"`

	// Workers bounds concurrent enrichment fetches
	Workers int `env:"WORKERS" envDefault:"8"`
	// RefreshInterval forces an enrichment pass without roster changes
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`

	// FromStart tails the log from the beginning instead of the end
	FromStart bool `env:"FROM_START" envDefault:"false"`

	// LogLevel sets the slog level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LOBBYSIGHT_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
