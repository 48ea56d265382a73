package redis

import (
	"fmt"

	"github.com/lobbysight/lobbysight/internal/model"
)

// Key prefix for all overlay data
const keyPrefix = "lobbysight"

// aliasKey returns the Redis key for an alias entry
func aliasKey(alias string) string {
	return fmt.Sprintf("%s:alias:%s", keyPrefix, model.NormalizeAlias(alias))
}

// aliasIndexKey returns the Redis key for the SET of known aliases
func aliasIndexKey() string {
	return fmt.Sprintf("%s:idx:aliases", keyPrefix)
}

// settingsKey returns the Redis key for the overlay settings
func settingsKey() string {
	return fmt.Sprintf("%s:settings", keyPrefix)
}
