package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlayerUUID is the stable account identifier for a player, stored in
// canonical dashed lowercase form
type PlayerUUID string

// ParsePlayerUUID normalizes a UUID string from the remote APIs, which
// return both dashed and undashed forms
func ParsePlayerUUID(s string) (PlayerUUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return PlayerUUID(u.String()), nil
}

// Identity is a player as the roster knows them: the username seen in
// chat, plus the account UUID once resolution has succeeded
type Identity struct {
	UUID     PlayerUUID // empty while unresolved
	Username string
}

// Resolved reports whether the identity has been tied to a stable account
func (i Identity) Resolved() bool {
	return i.UUID != ""
}

// AliasEntry is a user-curated mapping from an in-game alias to a known
// account. Entries are managed through the settings surface and are
// read-only to the enrichment core.
type AliasEntry struct {
	Alias     string
	UUID      PlayerUUID
	Note      string
	UpdatedAt time.Time
}

// NormalizeAlias canonicalizes an alias for case-insensitive matching
func NormalizeAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}

// Settings holds the externally-managed overlay settings read by the core
type Settings struct {
	APIKey    string
	LogPath   string
	UpdatedAt time.Time
}
