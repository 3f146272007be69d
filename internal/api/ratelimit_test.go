package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiterSweepsIdleClients(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatal("Expected the first request to pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Expected the burst of 1 to be spent")
	}
	rl.Allow("10.0.0.2")

	now = now.Add(30 * time.Second)
	if !rl.Allow("10.0.0.2") {
		t.Error("Expected the budget to refill")
	}

	now = now.Add(31 * time.Second)
	rl.Allow("10.0.0.3")

	if rl.clients() != 2 {
		t.Errorf("Expected the idle client to be swept, got %d budgets", rl.clients())
	}
}

func TestIPRateLimiterKeepsBudgetsWithoutTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(24 * time.Hour)
	rl.Allow("10.0.0.2")

	if rl.clients() != 2 {
		t.Errorf("Expected 2 budgets, got %d", rl.clients())
	}
}

func TestConnLimiter(t *testing.T) {
	c := newConnLimiter(2)

	if !c.Acquire("a") || !c.Acquire("a") {
		t.Fatal("Expected two slots")
	}
	if c.Acquire("a") {
		t.Error("Expected the third connection to be rejected")
	}
	if !c.Acquire("b") {
		t.Error("Expected another address to have its own slots")
	}

	c.Release("a")
	if !c.Acquire("a") {
		t.Error("Expected a released slot to be reusable")
	}

	c.Release("b")
	if _, ok := c.open["b"]; ok {
		t.Error("Expected an address without connections to be forgotten")
	}
}

func TestClientIPIgnoresForwardingHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/state", nil)
	r.RemoteAddr = "192.0.2.7:51000"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	r.Header.Set("X-Real-IP", "203.0.113.10")

	if got := clientIP(r); got != "192.0.2.7" {
		t.Errorf("Expected the peer address, got %q", got)
	}
}
