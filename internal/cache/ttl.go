package cache

import (
	"sync"
	"time"

	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
)

// TTL is a thread-safe expiring key/value store. Every entry lives for
// the duration given at construction; lookups after expiry behave as
// absent. Capacity is bounded: once maxEntries is exceeded the
// oldest-inserted entries are evicted first.
//
// Clear bumps a generation counter. SetGeneration lets callers that
// started a slow computation before a Clear discard their writes instead
// of resurrecting invalidated data.
type TTL[V any] struct {
	ttl        time.Duration
	maxEntries int
	clock      clock.Clock

	mu         sync.Mutex
	entries    map[string]entry[V]
	order      []string // insertion order, for eviction
	generation uint64
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewTTL creates a cache with the given per-entry lifetime and capacity
func NewTTL[V any](ttl time.Duration, maxEntries int, clk clock.Clock) *TTL[V] {
	if clk == nil {
		clk = clock.New()
	}
	return &TTL[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clk,
		entries:    make(map[string]entry[V]),
	}
}

// Get returns the value for key and true if present and unexpired
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.removeOrder(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set inserts or overwrites key with a fresh expiry
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// SetGeneration inserts key only if the cache has not been cleared since
// generation was observed. Returns whether the value was stored.
func (c *TTL[V]) SetGeneration(key string, value V, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return false
	}
	c.set(key, value)
	return true
}

// Generation returns the current generation counter. Observe it before a
// slow computation and pass it to SetGeneration afterwards.
func (c *TTL[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Delete removes key. Removing an absent key is a no-op.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.removeOrder(key)
}

// Clear removes all entries and advances the generation counter
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.order = c.order[:0]
	c.generation++
}

// Len returns the number of stored entries, including not yet
// garbage-collected expired ones
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// set stores the entry and evicts oldest-inserted entries past capacity.
// Caller holds c.mu.
func (c *TTL[V]) set(key string, value V) {
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// removeOrder drops key's insertion-order slot so a later re-insert
// cannot leave a stale duplicate for eviction to hit. Caller holds c.mu.
func (c *TTL[V]) removeOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
