package denick

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lobbysight/lobbysight/internal/cache"
	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/hypixel"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/storage"
)

// resolution is a cache entry. A stored entry with OK false is a negative
// result: the alias was looked up recently and nothing knows it, so
// repeated misses don't burn remote calls.
type resolution struct {
	Identity model.Identity
	OK       bool
}

// Service resolves usernames seen in chat to stable player identities.
// User-curated aliases win over everything; after that it tries a direct
// username lookup, then the denick provider.
type Service struct {
	storage storage.Storage
	client  hypixel.Client
	clock   clock.Clock
	logger  *slog.Logger
	cache   *cache.TTL[resolution]
}

// Config holds configuration for the denick service
type Config struct {
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// DefaultConfig returns default denick configuration
func DefaultConfig() Config {
	return Config{
		CacheTTL:        10 * time.Minute,
		CacheMaxEntries: 512,
	}
}

// New creates a new denick service
func New(storage storage.Storage, client hypixel.Client, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if cfg.CacheMaxEntries == 0 {
		cfg.CacheMaxEntries = DefaultConfig().CacheMaxEntries
	}
	return &Service{
		storage: storage,
		client:  client,
		clock:   clk,
		logger:  logger,
		cache:   cache.NewTTL[resolution](cfg.CacheTTL, cfg.CacheMaxEntries, clk),
	}
}

// Resolve maps a username or nickname to an identity. The second return is
// false when the name is unresolvable for now; resolution failures are
// never fatal, the player just stays unresolved on the overlay.
func (s *Service) Resolve(ctx context.Context, name string) (model.Identity, bool) {
	key := model.NormalizeAlias(name)

	// Curated aliases bypass the cache so edits take effect immediately
	if entry, err := s.storage.GetAliasEntry(ctx, key); err == nil {
		return model.Identity{UUID: entry.UUID, Username: name}, true
	} else if !errors.Is(err, model.ErrAliasNotFound) {
		s.logger.Warn("alias lookup failed",
			slog.String("alias", key),
			slog.String("error", err.Error()))
	}

	if cached, ok := s.cache.Get(key); ok {
		return cached.Identity, cached.OK
	}

	res := s.resolveRemote(ctx, name)
	s.cache.Set(key, res)
	return res.Identity, res.OK
}

// resolveRemote resolves over the network. Every failure resolves to a
// negative, cached for the full TTL like successes, so a lobby of
// unresolvable names costs at most one remote round per name per TTL.
// Forget clears a negative early when a curated alias arrives.
func (s *Service) resolveRemote(ctx context.Context, name string) resolution {
	uuid, err := s.client.UUIDForName(ctx, name)
	if err == nil {
		return resolution{Identity: model.Identity{UUID: uuid, Username: name}, OK: true}
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.logger.Warn("username lookup failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return resolution{}
	}

	// Not a real username, so it may be a nickname
	id, err := s.client.Denick(ctx, name)
	if err == nil {
		return resolution{Identity: id, OK: true}
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.logger.Warn("denick lookup failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
	}

	return resolution{}
}

// Forget drops any cached resolution for a name, forcing the next Resolve
// to hit the remote path
func (s *Service) Forget(name string) {
	s.cache.Delete(model.NormalizeAlias(name))
}

// Flush clears the whole resolution cache
func (s *Service) Flush() {
	s.cache.Clear()
}
