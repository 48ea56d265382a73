package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lobbysight/lobbysight/internal/dependencies/mocks"
)

type TTLSuite struct {
	suite.Suite
	clock *mocks.MockClock
	cache *TTL[string]
}

func TestTTLSuite(t *testing.T) {
	suite.Run(t, new(TTLSuite))
}

func (s *TTLSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.cache = NewTTL[string](time.Minute, 100, s.clock)
}

func (s *TTLSuite) TestGetMissingKey() {
	_, ok := s.cache.Get("missing")
	s.False(ok)
}

func (s *TTLSuite) TestSetAndGet() {
	s.cache.Set("a", "value")

	v, ok := s.cache.Get("a")
	s.True(ok)
	s.Equal("value", v)
}

func (s *TTLSuite) TestValueRetrievableUntilExpiry() {
	s.cache.Set("a", "value")

	s.clock.Advance(59 * time.Second)
	_, ok := s.cache.Get("a")
	s.True(ok)

	s.clock.Advance(time.Second)
	_, ok = s.cache.Get("a")
	s.False(ok)
}

func (s *TTLSuite) TestOverwriteRefreshesExpiry() {
	s.cache.Set("a", "old")
	s.clock.Advance(45 * time.Second)
	s.cache.Set("a", "new")

	s.clock.Advance(30 * time.Second)
	v, ok := s.cache.Get("a")
	s.True(ok)
	s.Equal("new", v)
}

func (s *TTLSuite) TestDelete() {
	s.cache.Set("a", "value")
	s.cache.Delete("a")

	_, ok := s.cache.Get("a")
	s.False(ok)

	// Deleting an absent key is a no-op
	s.cache.Delete("a")
}

func (s *TTLSuite) TestCapacityEvictsOldestInserted() {
	small := NewTTL[string](time.Minute, 3, s.clock)

	for i := 0; i < 4; i++ {
		small.Set(fmt.Sprintf("k%d", i), "v")
	}

	_, ok := small.Get("k0")
	s.False(ok, "oldest-inserted entry should be evicted")
	for i := 1; i < 4; i++ {
		_, ok := small.Get(fmt.Sprintf("k%d", i))
		s.True(ok)
	}
	s.Equal(3, small.Len())
}

func (s *TTLSuite) TestReinsertAfterExpiryKeepsEvictionOrder() {
	small := NewTTL[string](time.Minute, 2, s.clock)

	small.Set("a", "first")
	s.clock.Advance(2 * time.Minute)
	_, ok := small.Get("a") // lazily drops the expired entry
	s.False(ok)

	small.Set("b", "second")
	small.Set("a", "again")
	small.Set("c", "third") // over capacity: b is the oldest live entry

	_, ok = small.Get("b")
	s.False(ok)
	v, ok := small.Get("a")
	s.True(ok)
	s.Equal("again", v)
	_, ok = small.Get("c")
	s.True(ok)
}

func (s *TTLSuite) TestReinsertAfterDeleteKeepsEvictionOrder() {
	small := NewTTL[string](time.Minute, 2, s.clock)

	small.Set("a", "first")
	small.Delete("a")
	small.Set("b", "second")
	small.Set("a", "again")
	small.Set("c", "third")

	_, ok := small.Get("b")
	s.False(ok)
	_, ok = small.Get("a")
	s.True(ok)
	_, ok = small.Get("c")
	s.True(ok)
}

func (s *TTLSuite) TestClearAdvancesGeneration() {
	gen := s.cache.Generation()
	s.cache.Set("a", "value")
	s.cache.Clear()

	_, ok := s.cache.Get("a")
	s.False(ok)
	s.Equal(gen+1, s.cache.Generation())
}

func (s *TTLSuite) TestSetGenerationDiscardsStaleWrites() {
	gen := s.cache.Generation()

	// A clear between observing the generation and writing invalidates the write
	s.cache.Clear()
	s.False(s.cache.SetGeneration("a", "stale", gen))
	_, ok := s.cache.Get("a")
	s.False(ok)

	// Without an intervening clear the write lands
	gen = s.cache.Generation()
	s.True(s.cache.SetGeneration("b", "fresh", gen))
	v, ok := s.cache.Get("b")
	s.True(ok)
	s.Equal("fresh", v)
}
