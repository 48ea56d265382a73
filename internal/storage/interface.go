package storage

import (
	"context"

	"github.com/lobbysight/lobbysight/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Alias operations. Aliases are user-curated nickname mappings that
	// take precedence over remote nick resolution.
	SaveAliasEntry(ctx context.Context, entry *model.AliasEntry) error
	GetAliasEntry(ctx context.Context, alias string) (*model.AliasEntry, error)
	ListAliasEntries(ctx context.Context) ([]*model.AliasEntry, error)
	DeleteAliasEntry(ctx context.Context, alias string) error

	// Settings operations
	SaveSettings(ctx context.Context, settings *model.Settings) error
	GetSettings(ctx context.Context) (*model.Settings, error)
}
