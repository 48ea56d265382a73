package mocks

import (
	"sync"
	"time"

	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Advance and
// Set move the clock and fire any After waiters whose deadline passed.
type MockClock struct {
	CurrentTime time.Time

	mu      sync.Mutex
	waiters []mockWaiter
}

type mockWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// After returns a channel that receives the mocked time once the clock
// has been advanced past the deadline
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		ch <- c.CurrentTime
		return ch
	}
	c.waiters = append(c.waiters, mockWaiter{deadline: c.CurrentTime.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.setLocked(c.CurrentTime.Add(d))
	c.mu.Unlock()
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.setLocked(t)
	c.mu.Unlock()
}

func (c *MockClock) setLocked(t time.Time) {
	c.CurrentTime = t
	kept := c.waiters[:0]
	for _, w := range c.waiters {
		if t.Before(w.deadline) {
			kept = append(kept, w)
			continue
		}
		w.ch <- t
	}
	c.waiters = kept
}
