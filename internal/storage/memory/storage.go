package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	aliases  map[string]*model.AliasEntry
	settings *model.Settings
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		aliases: make(map[string]*model.AliasEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Alias operations

func (s *Storage) SaveAliasEntry(ctx context.Context, entry *model.AliasEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[model.NormalizeAlias(entry.Alias)] = entry
	return nil
}

func (s *Storage) GetAliasEntry(ctx context.Context, alias string) (*model.AliasEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.aliases[model.NormalizeAlias(alias)]
	if !ok {
		return nil, model.ErrAliasNotFound
	}
	return entry, nil
}

func (s *Storage) ListAliasEntries(ctx context.Context) ([]*model.AliasEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*model.AliasEntry, 0, len(s.aliases))
	for _, entry := range s.aliases {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return model.NormalizeAlias(entries[i].Alias) < model.NormalizeAlias(entries[j].Alias)
	})
	return entries, nil
}

func (s *Storage) DeleteAliasEntry(ctx context.Context, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.aliases, model.NormalizeAlias(alias))
	return nil
}

// Settings operations

func (s *Storage) SaveSettings(ctx context.Context, settings *model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Storage) GetSettings(ctx context.Context) (*model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, model.ErrSettingsNotFound
	}
	return s.settings, nil
}
