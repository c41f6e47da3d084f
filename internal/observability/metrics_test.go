package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/auth/login", "POST", 200, 5*time.Millisecond)
	m.RecordRequest("/auth/login", "POST", 200, 7*time.Millisecond)
	m.RecordError("/auth/login", "POST", "RATE_LIMIT_EXCEEDED")
	m.RecordError("/admin/users", "GET", "UNAUTHORIZED")

	snap := m.Snapshot()
	if snap.TotalRequests != 2 {
		t.Fatalf("total requests = %d, want 2", snap.TotalRequests)
	}
	if snap.TotalErrors != 2 {
		t.Fatalf("total errors = %d, want 2", snap.TotalErrors)
	}
	if snap.RateLimited != 1 {
		t.Fatalf("rate limited = %d, want 1", snap.RateLimited)
	}
	if snap.Requests["/auth/login|POST|200"] != 2 {
		t.Fatalf("request counter = %d, want 2", snap.Requests["/auth/login|POST|200"])
	}

	// Snapshot must be a copy.
	snap.Requests["/auth/login|POST|200"] = 99
	if got := m.Snapshot().Requests["/auth/login|POST|200"]; got != 2 {
		t.Fatalf("snapshot aliased internal state: %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
	if snap := m.Snapshot(); snap.TotalRequests != 0 {
		t.Fatalf("nil metrics snapshot = %+v", snap)
	}
}
