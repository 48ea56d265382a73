package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
)

// Limiter bounds how often an operation may run: at most limit
// acquisitions within any trailing window. It is shared by everything
// that talks to the remote API.
//
// Internally it keeps the timestamps of the last limit acquisitions.
// Acquiring takes the oldest timestamp and waits for it to fall out of
// the window before recording a fresh one. A buffered channel acts as a
// counting semaphore so concurrent callers each claim their own slot.
type Limiter struct {
	limit  int
	window time.Duration
	clock  clock.Clock

	mu      sync.Mutex
	history []time.Time // sorted, always exactly limit-len(inflight) entries
	slots   chan struct{}
}

// New creates a Limiter allowing limit acquisitions per trailing window
func New(limit int, window time.Duration, clk clock.Clock) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if clk == nil {
		clk = clock.New()
	}

	l := &Limiter{
		limit:  limit,
		window: window,
		clock:  clk,
		slots:  make(chan struct{}, limit),
	}

	// Seed the history with timestamps already outside the window so the
	// first limit acquisitions proceed immediately
	expired := clk.Now().Add(-window)
	l.history = make([]time.Time, limit)
	for i := range l.history {
		l.history[i] = expired
	}
	for i := 0; i < limit; i++ {
		l.slots <- struct{}{}
	}

	return l
}

// Acquire blocks until an acquisition is permitted under the window
// invariant, records it, and returns. It returns early with the context
// error if ctx is cancelled while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case <-l.slots:
	case <-ctx.Done():
		return ctx.Err()
	}

	oldest := l.takeOldest()

	if wait := l.window - l.clock.Now().Sub(oldest); wait > 0 {
		select {
		case <-l.clock.After(wait):
		case <-ctx.Done():
			// Put the state back so the slot is not lost
			l.restore(oldest)
			return ctx.Err()
		}
	}

	l.record()
	return nil
}

// TryAcquire is the non-blocking variant: it reports false if acquiring
// now would violate the window invariant, without waiting.
func (l *Limiter) TryAcquire() bool {
	select {
	case <-l.slots:
	default:
		return false
	}

	oldest := l.takeOldest()

	if l.clock.Now().Sub(oldest) < l.window {
		l.restore(oldest)
		return false
	}

	l.record()
	return true
}

// Limit returns the configured acquisition limit
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured trailing window
func (l *Limiter) Window() time.Duration {
	return l.window
}

func (l *Limiter) takeOldest() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	oldest := l.history[0]
	l.history = l.history[1:]
	return oldest
}

func (l *Limiter) record() {
	now := l.clock.Now()
	l.mu.Lock()
	l.insert(now)
	l.mu.Unlock()
	l.slots <- struct{}{}
}

func (l *Limiter) restore(ts time.Time) {
	l.mu.Lock()
	l.insert(ts)
	l.mu.Unlock()
	l.slots <- struct{}{}
}

// insert keeps history sorted so the wait above is always for the oldest
// outstanding acquisition. Caller holds l.mu.
func (l *Limiter) insert(ts time.Time) {
	i := sort.Search(len(l.history), func(i int) bool {
		return l.history[i].After(ts)
	})
	l.history = append(l.history, time.Time{})
	copy(l.history[i+1:], l.history[i:])
	l.history[i] = ts
}
