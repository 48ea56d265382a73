package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/lobbysight/lobbysight/internal/config"
	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/hypixel"
	"github.com/lobbysight/lobbysight/internal/overlay"
	"github.com/lobbysight/lobbysight/internal/ratelimit"
	"github.com/lobbysight/lobbysight/internal/roster"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/services/enrich"
	"github.com/lobbysight/lobbysight/internal/services/stats"
	"github.com/lobbysight/lobbysight/internal/storage"
	"github.com/lobbysight/lobbysight/internal/storage/memory"
	redisstorage "github.com/lobbysight/lobbysight/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	KeyHolder *hypixel.KeyHolder
	Client    hypixel.Client

	// Core state
	Tracker *roster.Tracker
	State   *overlay.State

	// Services
	DenickService *denick.Service
	StatsService  *stats.Service
	Orchestrator  *enrich.Orchestrator
}

// Config holds configuration for the application factory
type Config struct {
	// Settings is the loaded environment configuration
	Settings config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Client overrides the remote API client (used by tests)
	Client hypixel.Client
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.Settings.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		if cfg.Settings.RedisURL != "" {
			redisCfg.URL = cfg.Settings.RedisURL
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	keyHolder := hypixel.NewKeyHolder(cfg.Settings.APIKey)

	client := cfg.Client
	if client == nil {
		limit := cfg.Settings.RequestLimit
		if limit <= 0 {
			limit = 60
		}
		window := cfg.Settings.RequestWindow
		if window <= 0 {
			window = time.Minute
		}
		limiter := ratelimit.New(limit, window, clk)
		client = hypixel.NewHTTPClient(keyHolder.Get, limiter)
	}

	tracker := roster.New(logger)
	state := overlay.NewState()

	denickService := denick.New(store, client, clk, logger, denick.DefaultConfig())
	statsService := stats.New(client, clk, logger, stats.DefaultConfig())

	orchestratorCfg := enrich.DefaultConfig()
	if cfg.Settings.Workers > 0 {
		orchestratorCfg.Workers = cfg.Settings.Workers
	}
	if cfg.Settings.RefreshInterval > 0 {
		orchestratorCfg.RefreshInterval = cfg.Settings.RefreshInterval
	}
	orchestrator := enrich.New(tracker, denickService, statsService, state, clk, logger, orchestratorCfg)

	return &App{
		Storage:       store,
		Clock:         clk,
		KeyHolder:     keyHolder,
		Client:        client,
		Tracker:       tracker,
		State:         state,
		DenickService: denickService,
		StatsService:  statsService,
		Orchestrator:  orchestrator,
	}, nil
}
