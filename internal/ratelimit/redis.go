package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter keeps counters in Redis so the limit holds across instances.
// Counting uses INCR with an expiry set on the first request of the window.
// When Redis is unreachable the limiter logs and fails open: a decision is
// always returned.
type RedisLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLimiter constructs the limiter around an existing client.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, logger: logger}
}

// Allow increments the window counter atomically and derives the decision
// from the resulting count and the key's remaining TTL.
func (l *RedisLimiter) Allow(ctx context.Context, identifier string, p Policy) Decision {
	now := time.Now()
	key := redisKeyPrefix + bucketKey(identifier, p.Window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, p.Window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("identifier", identifier), zap.Error(err))
		return Decision{
			Allowed:   true,
			Limit:     p.MaxRequests,
			Remaining: p.MaxRequests,
			ResetAt:   now.Add(p.Window),
		}
	}

	count := incr.Val()
	resetAt := now.Add(p.Window)
	if d := ttl.Val(); d > 0 {
		resetAt = now.Add(d)
	}

	if count > int64(p.MaxRequests) {
		return Decision{
			Allowed:    false,
			Limit:      p.MaxRequests,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterSeconds(resetAt, now),
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     p.MaxRequests,
		Remaining: p.MaxRequests - int(count),
		ResetAt:   resetAt,
	}
}
