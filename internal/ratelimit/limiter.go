// Package ratelimit bounds request rates per client identifier within fixed
// time windows. Policies are independent buckets; a client identifier is
// combined with the window length so buckets with different windows never
// share a counter.
package ratelimit

import (
	"context"
	"strconv"
	"time"
)

// Policy configures a single bucket.
type Policy struct {
	MaxRequests int
	Window      time.Duration
	Message     string
}

// Decision is the outcome of a rate-limit check. RetryAfter is meaningful
// only when Allowed is false.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Limiter decides whether a request identified by a client key may proceed.
// Implementations must be safe for concurrent use and must always return a
// decision, never an error.
type Limiter interface {
	Allow(ctx context.Context, identifier string, p Policy) Decision
}

// bucketKey partitions counters by identifier and window length so the same
// client tracked under differently sized windows never collides.
func bucketKey(identifier string, window time.Duration) string {
	return identifier + ":" + strconv.FormatInt(window.Milliseconds(), 10)
}

// retryAfterSeconds is ceil((resetAt-now)/1s), clamped to zero.
func retryAfterSeconds(resetAt, now time.Time) int {
	remaining := resetAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	secs := int(remaining / time.Second)
	if remaining%time.Second != 0 {
		secs++
	}
	return secs
}
