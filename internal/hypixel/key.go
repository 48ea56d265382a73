package hypixel

import "sync/atomic"

// KeyHolder is a concurrency-safe holder for the current API key. The key
// is seeded from configuration and replaced at runtime when a fresh one is
// seen in the log.
type KeyHolder struct {
	v atomic.Value
}

// NewKeyHolder creates a holder with an initial key (may be empty)
func NewKeyHolder(key string) *KeyHolder {
	h := &KeyHolder{}
	h.v.Store(key)
	return h
}

// Get returns the current key
func (h *KeyHolder) Get() string {
	key, _ := h.v.Load().(string)
	return key
}

// Set replaces the current key
func (h *KeyHolder) Set(key string) {
	h.v.Store(key)
}
