package ratelimit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(limiter Limiter, p Policy) *fiber.App {
	app := fiber.New()
	app.Get("/", Handler(limiter, p, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

type countingRecorder struct {
	calls []string
}

func (r *countingRecorder) RecordError(path, method, code string) {
	r.calls = append(r.calls, path+"|"+method+"|"+code)
}

func TestHandler_SetsRateLimitHeaders(t *testing.T) {
	limiter := NewMemoryLimiter()
	app := newTestApp(limiter, Policy{MaxRequests: 2, Window: time.Minute})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("X-RateLimit-Limit = %q, want \"2\"", got)
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "1" {
		t.Fatalf("X-RateLimit-Remaining = %q, want \"1\"", got)
	}
	if _, err := time.Parse(time.RFC3339, resp.Header.Get("X-RateLimit-Reset")); err != nil {
		t.Fatalf("X-RateLimit-Reset is not RFC3339: %v", err)
	}
}

func TestHandler_DeniesWithEnvelopeAndRetryAfter(t *testing.T) {
	limiter := NewMemoryLimiter()
	app := newTestApp(limiter, Policy{MaxRequests: 1, Window: time.Minute, Message: "slow down"})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("warmup: %v", err)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code       string `json:"code"`
			Message    string `json:"message"`
			RetryAfter int    `json:"retryAfter"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatal("success should be false")
	}
	if body.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("error code = %q, want RATE_LIMIT_EXCEEDED", body.Error.Code)
	}
	if body.Error.Message != "slow down" {
		t.Fatalf("error message = %q, want policy message", body.Error.Message)
	}
	if body.Error.RetryAfter < 0 {
		t.Fatalf("retryAfter = %d, want >= 0", body.Error.RetryAfter)
	}
}

func TestHandler_ReportsDeniedRequests(t *testing.T) {
	limiter := NewMemoryLimiter()
	rec := &countingRecorder{}
	app := fiber.New()
	app.Get("/limited", Handler(limiter, Policy{MaxRequests: 1, Window: time.Minute}, rec),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	req := httptest.NewRequest("GET", "/limited", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	if _, err := app.Test(req); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("allowed request was reported: %v", rec.calls)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "/limited|GET|RATE_LIMIT_EXCEEDED" {
		t.Fatalf("recorder calls = %v, want one denial for /limited", rec.calls)
	}
}

func TestHandler_SeparatesClients(t *testing.T) {
	limiter := NewMemoryLimiter()
	app := newTestApp(limiter, Policy{MaxRequests: 1, Window: time.Minute})

	first := httptest.NewRequest("GET", "/", nil)
	first.Header.Set("X-Forwarded-For", "1.1.1.1")
	if _, err := app.Test(first); err != nil {
		t.Fatalf("first client: %v", err)
	}

	second := httptest.NewRequest("GET", "/", nil)
	second.Header.Set("X-Forwarded-For", "2.2.2.2")
	resp, err := app.Test(second)
	if err != nil {
		t.Fatalf("second client: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("second client status = %d, want 200", resp.StatusCode)
	}
}

func TestClientID_HeaderPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded-for wins", map[string]string{
			"X-Forwarded-For":  "1.2.3.4, 10.0.0.1",
			"X-Real-IP":        "5.6.7.8",
			"CF-Connecting-IP": "9.9.9.9",
		}, "1.2.3.4"},
		{"real-ip next", map[string]string{
			"X-Real-IP":        "5.6.7.8",
			"CF-Connecting-IP": "9.9.9.9",
		}, "5.6.7.8"},
		{"cloudflare last", map[string]string{
			"CF-Connecting-IP": "9.9.9.9",
		}, "9.9.9.9"},
		{"no headers", nil, "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = ClientID(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ClientID = %q, want %q", got, tc.want)
			}
		})
	}
}
