package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. Counters
// are per instance: in a multi-instance deployment each instance enforces
// the limit independently, so the effective global limit multiplies by the
// instance count. Use RedisLimiter when that matters.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	sweepFn func() bool
}

// NewMemoryLimiter constructs an empty limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*entry),
		now:     time.Now,
		sweepFn: func() bool { return rand.Intn(10) == 0 },
	}
}

// Allow performs the check-and-consume for one request. The entry is created
// on the first request of a window, incremented while under the limit, and
// replaced outright once its reset time has passed.
func (l *MemoryLimiter) Allow(_ context.Context, identifier string, p Policy) Decision {
	now := l.now()
	key := bucketKey(identifier, p.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sweepFn() {
		l.sweepLocked(now)
	}

	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(p.Window)}
		l.entries[key] = e
		return Decision{
			Allowed:   true,
			Limit:     p.MaxRequests,
			Remaining: p.MaxRequests - 1,
			ResetAt:   e.resetAt,
		}
	}

	if e.count < p.MaxRequests {
		e.count++
		return Decision{
			Allowed:   true,
			Limit:     p.MaxRequests,
			Remaining: p.MaxRequests - e.count,
			ResetAt:   e.resetAt,
		}
	}

	return Decision{
		Allowed:    false,
		Limit:      p.MaxRequests,
		Remaining:  0,
		ResetAt:    e.resetAt,
		RetryAfter: retryAfterSeconds(e.resetAt, now),
	}
}

// Len reports the current number of tracked entries.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweepLocked drops expired entries. Best effort: expired entries are also
// replaced lazily on their next access, so skipping a sweep costs only
// memory, never correctness.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
		}
	}
}
