package ratelimit

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultMessage = "too many requests, slow down"

// Recorder receives a notification for every denied request so the stats
// counters stay in step with what clients actually saw. The 429 is written
// here rather than routed through the error middleware because its body
// shape carries success and retryAfter fields the shared envelope does not.
type Recorder interface {
	RecordError(path, method, code string)
}

// ClientID derives the rate-limit partition key from proxy headers, taking
// the first of X-Forwarded-For, X-Real-IP and CF-Connecting-IP that is set.
// Requests with no usable header share the "unknown" bucket.
func ClientID(c *fiber.Ctx) string {
	if fwd := strings.TrimSpace(c.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := strings.TrimSpace(c.Get("X-Real-IP")); real != "" {
		return real
	}
	if cf := strings.TrimSpace(c.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}
	return "unknown"
}

// Handler builds a Fiber middleware enforcing the given policy. Allowed
// requests pass through with X-RateLimit headers; denied requests get a 429
// with a Retry-After hint and are reported to the recorder.
func Handler(limiter Limiter, p Policy, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := limiter.Allow(c.Context(), ClientID(c), p)
		setHeaders(c, decision)

		if decision.Allowed {
			return c.Next()
		}

		if rec != nil {
			rec.RecordError(c.Path(), c.Method(), "RATE_LIMIT_EXCEEDED")
		}

		message := p.Message
		if message == "" {
			message = defaultMessage
		}
		c.Set("Retry-After", intString(decision.RetryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":       "RATE_LIMIT_EXCEEDED",
				"message":    message,
				"retryAfter": decision.RetryAfter,
			},
		})
	}
}

func setHeaders(c *fiber.Ctx, d Decision) {
	c.Set("X-RateLimit-Limit", intString(d.Limit))
	c.Set("X-RateLimit-Remaining", intString(d.Remaining))
	c.Set("X-RateLimit-Reset", d.ResetAt.UTC().Format(time.RFC3339))
}

func intString(v int) string {
	if v < 0 {
		v = 0
	}
	return strconv.Itoa(v)
}
