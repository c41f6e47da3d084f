package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "admin-service" {
		t.Fatalf("app name = %q", cfg.App.Name)
	}
	if cfg.RateLimit.Store != "memory" {
		t.Fatalf("rate limit store = %q, want memory", cfg.RateLimit.Store)
	}

	if got := cfg.RateLimit.Login; got.MaxRequests != 5 || got.Window != 15*time.Minute {
		t.Fatalf("login bucket = %+v, want 5/15m", got)
	}
	if got := cfg.RateLimit.PasswordReset; got.MaxRequests != 3 || got.Window != time.Hour {
		t.Fatalf("password reset bucket = %+v, want 3/1h", got)
	}
	if got := cfg.RateLimit.API; got.MaxRequests != 100 || got.Window != 15*time.Minute {
		t.Fatalf("api bucket = %+v, want 100/15m", got)
	}
	if got := cfg.RateLimit.Health; got.MaxRequests != 100 || got.Window != time.Minute {
		t.Fatalf("health bucket = %+v, want 100/1m", got)
	}
}

func TestLoad_BucketOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_LOGIN_MAX", "50")
	t.Setenv("RATE_LIMIT_LOGIN_WINDOW_SECONDS", "900")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.RateLimit.Login; got.MaxRequests != 50 || got.Window != 15*time.Minute {
		t.Fatalf("login bucket = %+v, want 50/900s", got)
	}
}

func TestRequestTimeout(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 30}
	if app.RequestTimeout() != 30*time.Second {
		t.Fatalf("timeout = %v", app.RequestTimeout())
	}
	app.RequestTimeoutSeconds = 0
	if app.RequestTimeout() != 0 {
		t.Fatalf("zero timeout = %v", app.RequestTimeout())
	}
}
