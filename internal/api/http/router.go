package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-service/internal/api/http/handlers"
	"github.com/spec-kit/admin-service/internal/auth"
	"github.com/spec-kit/admin-service/internal/config"
	"github.com/spec-kit/admin-service/internal/observability"
	"github.com/spec-kit/admin-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.Middleware
	Limiter        ratelimit.Limiter
	Limits         config.RateLimitConfig
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes, each behind its rate-limit bucket.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	limit := func(bucket config.RateLimitBucket, message string) fiber.Handler {
		return ratelimit.Handler(cfg.Limiter, ratelimit.Policy{
			MaxRequests: bucket.MaxRequests,
			Window:      bucket.Window,
			Message:     message,
		}, cfg.Metrics)
	}

	app.Get("/health/live", limit(cfg.Limits.Health, ""), cfg.Health.Live)
	app.Get("/health/ready", limit(cfg.Limits.Health, ""), cfg.Health.Ready)

	authGroup := app.Group("/auth", limit(cfg.Limits.API, ""))
	authGroup.Post("/register",
		limit(cfg.Limits.Login, "too many signup attempts, try again later"), cfg.Auth.Register)
	authGroup.Post("/login",
		limit(cfg.Limits.Login, "too many login attempts, try again later"), cfg.Auth.Login)
	authGroup.Post("/password/reset/request",
		limit(cfg.Limits.PasswordReset, "too many reset requests, try again later"), cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm",
		limit(cfg.Limits.PasswordReset, "too many reset attempts, try again later"), cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/email/verify",
		limit(cfg.Limits.PasswordReset, "too many verification attempts, try again later"), cfg.Auth.VerifyEmail)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/session", cfg.Auth.Session)
	protected.Post("/password/change",
		limit(cfg.Limits.ChangePassword, "too many password changes, try again later"), cfg.Auth.ChangePassword)
	protected.Post("/email/verify/resend",
		limit(cfg.Limits.ResendVerification, "too many resend requests, try again later"), cfg.Auth.ResendVerification)

	admin := app.Group("/admin", limit(cfg.Limits.API, ""), cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Patch("/users/:id", cfg.Users.Update)
	admin.Delete("/users/:id", cfg.Users.Delete)
	admin.Post("/users/:id/role", limit(cfg.Limits.AdminActions, ""), cfg.Users.ChangeRole)
	admin.Post("/users/:id/activate", limit(cfg.Limits.AdminActions, ""), cfg.Users.Activate)
	admin.Post("/users/:id/deactivate", limit(cfg.Limits.AdminActions, ""), cfg.Users.Deactivate)
	admin.Post("/users/:id/resend-verification", limit(cfg.Limits.AdminActions, ""), cfg.Users.ResendVerification)
	admin.Get("/stats", cfg.Stats.Get)
}
