package stats

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/singleflight"

	"github.com/lobbysight/lobbysight/internal/cache"
	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/hypixel"
	"github.com/lobbysight/lobbysight/internal/model"
)

// Service fetches and caches bedwars stats. Concurrent fetches for the
// same player collapse into one remote call, and throttled calls retry
// with backoff before giving up for the pass.
type Service struct {
	client hypixel.Client
	clock  clock.Clock
	logger *slog.Logger

	cache *cache.TTL[model.StatsRecord]
	group singleflight.Group
	cfg   Config

	// missingKeyReported keeps the missing-API-key warning to one log
	// line instead of one per player per pass
	missingKeyReported atomic.Bool
}

// Config holds configuration for the stats service
type Config struct {
	CacheTTL        time.Duration
	CacheMaxEntries int
	MaxRetries      uint
	InitialInterval time.Duration
}

// DefaultConfig returns default stats configuration
func DefaultConfig() Config {
	return Config{
		CacheTTL:        2 * time.Minute,
		CacheMaxEntries: 256,
		MaxRetries:      3,
		InitialInterval: 2 * time.Second,
	}
}

// New creates a new stats service
func New(client hypixel.Client, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if cfg.CacheMaxEntries == 0 {
		cfg.CacheMaxEntries = DefaultConfig().CacheMaxEntries
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = DefaultConfig().InitialInterval
	}
	return &Service{
		client: client,
		clock:  clk,
		logger: logger,
		cache:  cache.NewTTL[model.StatsRecord](cfg.CacheTTL, cfg.CacheMaxEntries, clk),
		cfg:    cfg,
	}
}

// Fetch returns the stats record for a resolved identity. It never returns
// an error: failures come back as records whose Outcome says what happened,
// so the overlay always has something to show.
func (s *Service) Fetch(ctx context.Context, id model.Identity) model.StatsRecord {
	key := string(id.UUID)

	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	// Collapse concurrent fetches for the same player into one call.
	// The cache generation is captured before the fetch so a Flush
	// during the call discards the stale write.
	gen := s.cache.Generation()
	result, _, _ := s.group.Do(key, func() (any, error) {
		record := s.fetch(ctx, id)
		// Retriable failures stay out of the cache so the next pass
		// tries again
		if !record.Retriable {
			s.cache.SetGeneration(key, record, gen)
		}
		return record, nil
	})
	return result.(model.StatsRecord)
}

func (s *Service) fetch(ctx context.Context, id model.Identity) model.StatsRecord {
	now := s.clock.Now()

	op := func() (model.StatsPayload, error) {
		payload, err := s.client.PlayerStats(ctx, id.UUID)
		if err == nil {
			return payload, nil
		}
		if errors.Is(err, model.ErrRateLimited) {
			return model.StatsPayload{}, err
		}
		return model.StatsPayload{}, backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialInterval

	payload, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(s.cfg.MaxRetries))
	if err == nil {
		return model.StatsRecord{
			Identity:  id,
			Outcome:   model.OutcomeKnown,
			Payload:   &payload,
			FetchedAt: now,
		}
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		// A resolved uuid with no profile means the name was a nick
		// that slipped past resolution
		return model.NickedRecord(id, now)
	case errors.Is(err, model.ErrMissingAPIKey):
		if !s.missingKeyReported.Swap(true) {
			s.logger.Warn("no API key configured, stats unavailable")
		}
		return retriableUnknown(id, now)
	case errors.Is(err, model.ErrInvalidAPIKey):
		s.logger.Warn("API key rejected", slog.String("player", id.Username))
		return retriableUnknown(id, now)
	case errors.Is(err, model.ErrRateLimited):
		s.logger.Debug("stats fetch throttled out of retries",
			slog.String("player", id.Username))
		return retriableUnknown(id, now)
	default:
		s.logger.Warn("stats fetch failed",
			slog.String("player", id.Username),
			slog.String("error", err.Error()))
		return retriableUnknown(id, now)
	}
}

// retriableUnknown marks a fetch that failed for reasons that may clear up
func retriableUnknown(id model.Identity, now time.Time) model.StatsRecord {
	record := model.UnknownRecord(id, now)
	record.Retriable = true
	return record
}

// KeyChanged resets the one-shot missing-key warning and flushes the cache
// so every player is refetched under the new key
func (s *Service) KeyChanged() {
	s.missingKeyReported.Store(false)
	s.cache.Clear()
}

// Flush clears the stats cache
func (s *Service) Flush() {
	s.cache.Clear()
}
