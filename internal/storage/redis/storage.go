package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Alias operations

func (s *Storage) SaveAliasEntry(ctx context.Context, entry *model.AliasEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	normalized := model.NormalizeAlias(entry.Alias)

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, aliasKey(entry.Alias), data, 0)
	pipe.SAdd(ctx, aliasIndexKey(), normalized)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAliasEntry(ctx context.Context, alias string) (*model.AliasEntry, error) {
	data, err := s.client.Get(ctx, aliasKey(alias)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAliasNotFound
		}
		return nil, err
	}

	var entry model.AliasEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Storage) ListAliasEntries(ctx context.Context) ([]*model.AliasEntry, error) {
	aliases, err := s.client.SMembers(ctx, aliasIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(aliases)

	entries := make([]*model.AliasEntry, 0, len(aliases))
	for _, alias := range aliases {
		entry, err := s.GetAliasEntry(ctx, alias)
		if err != nil {
			if errors.Is(err, model.ErrAliasNotFound) {
				// Index member without a value; drop the stale index entry
				s.client.SRem(ctx, aliasIndexKey(), alias)
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Storage) DeleteAliasEntry(ctx context.Context, alias string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, aliasKey(alias))
	pipe.SRem(ctx, aliasIndexKey(), model.NormalizeAlias(alias))
	_, err := pipe.Exec(ctx)
	return err
}

// Settings operations

func (s *Storage) SaveSettings(ctx context.Context, settings *model.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, settingsKey(), data, 0).Err()
}

func (s *Storage) GetSettings(ctx context.Context) (*model.Settings, error) {
	data, err := s.client.Get(ctx, settingsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSettingsNotFound
		}
		return nil, err
	}

	var settings model.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
