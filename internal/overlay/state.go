package overlay

import (
	"sync"

	"github.com/lobbysight/lobbysight/internal/model"
)

// State holds the latest published snapshot for readers (the API, the
// terminal renderer). Writers publish whole snapshots; readers never see
// a half-updated roster.
type State struct {
	mu       sync.RWMutex
	snapshot model.Snapshot
}

// NewState creates an empty overlay state
func NewState() *State {
	return &State{}
}

// ReadSnapshot returns the latest published snapshot
func (s *State) ReadSnapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Publish installs a new snapshot. Snapshots carry the sequence number of
// the enrichment pass that produced them; a slow pass finishing after a
// newer one is rejected so the overlay never goes backwards.
func (s *State) Publish(snapshot model.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.Seq <= s.snapshot.Seq {
		return false
	}
	s.snapshot = snapshot
	return true
}
