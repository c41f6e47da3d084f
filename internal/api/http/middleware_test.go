package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-service/internal/auth"
	"github.com/spec-kit/admin-service/internal/domain"
	"github.com/spec-kit/admin-service/internal/observability"
	"github.com/spec-kit/admin-service/internal/ratelimit"
)

type stubUserSource struct {
	users map[string]*domain.User
}

func (s *stubUserSource) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return user, nil
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newProtectedApp(t *testing.T, tm *auth.TokenManager, source auth.UserSource) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	middleware := auth.NewMiddleware(auth.NewSessionAuthorizer(tm, source))
	app.Get("/protected", middleware.Handle, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/admin-only", middleware.Handle, auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestAuthMiddleware_HTTPMapping(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	adminUser := &domain.User{
		ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin,
		IsActive: true, PasswordChangedAt: time.Now().Add(-time.Hour),
	}
	plainUser := &domain.User{
		ID: "user-1", Email: "user@example.com", Role: domain.RoleUser,
		IsActive: true, PasswordChangedAt: time.Now().Add(-time.Hour),
	}
	app := newProtectedApp(t, tm, &stubUserSource{users: map[string]*domain.User{
		"admin-1": adminUser,
		"user-1":  plainUser,
	}})

	adminToken, _, err := tm.GenerateToken(adminUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	userToken, _, err := tm.GenerateToken(plainUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	cases := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "/protected", "", fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"malformed header", "/protected", "Basic abc", fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "/protected", "Bearer garbage", fiber.StatusUnauthorized, "INVALID_TOKEN"},
		{"valid token", "/protected", "Bearer " + userToken, fiber.StatusOK, ""},
		{"user hits admin route", "/admin-only", "Bearer " + userToken, fiber.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"admin hits admin route", "/admin-only", "Bearer " + adminToken, fiber.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantCode == "" {
				return
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tc.wantCode {
				t.Fatalf("error code = %q, want %q", body.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestStatsCounters_CountRateLimitedRequests(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/limited",
		ratelimit.Handler(ratelimit.NewMemoryLimiter(), ratelimit.Policy{MaxRequests: 1, Window: time.Minute}, metrics),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	req := httptest.NewRequest("GET", "/limited", nil)
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

	snap := metrics.Snapshot()
	if snap.RateLimited != 1 {
		t.Fatalf("RateLimited = %d, want 1", snap.RateLimited)
	}
	if snap.TotalErrors != 1 {
		t.Fatalf("TotalErrors = %d, want 1", snap.TotalErrors)
	}
	if got := snap.Requests["/limited|GET|429"]; got != 1 {
		t.Fatalf("request counter for 429 = %d, want 1 (requests: %v)", got, snap.Requests)
	}
}

func TestStatsCounters_CountErrorStatusForFailedRequests(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "nope")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	snap := metrics.Snapshot()
	if got := snap.Requests["/fail|GET|401"]; got != 1 {
		t.Fatalf("request counter for 401 = %d, want 1 (requests: %v)", got, snap.Requests)
	}
	if got := snap.Requests["/fail|GET|200"]; got != 0 {
		t.Fatalf("failed request counted under 200 (requests: %v)", snap.Requests)
	}
}

func TestAuthMiddleware_RejectsRotatedToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	issuedAt := time.Now().Add(-time.Hour)
	user := &domain.User{
		ID: "user-1", Email: "user@example.com", Role: domain.RoleUser,
		IsActive: true, PasswordChangedAt: issuedAt,
	}
	source := &stubUserSource{users: map[string]*domain.User{"user-1": user}}
	app := newProtectedApp(t, tm, source)

	token, _, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rotated := *user
	rotated.PasswordChangedAt = issuedAt.Add(30 * time.Minute)
	source.users["user-1"] = &rotated

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 after password rotation", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "INVALID_TOKEN" {
		t.Fatalf("error code = %q, want INVALID_TOKEN", body.Error.Code)
	}
}
