package curio

import (
	"testing"
	"time"
)

func TestLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLimiter(2, 200*time.Millisecond)
	defer limiter.Close()
	ip := "203.0.113.10"

	if !limiter.Check(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	limiter.Record(ip)
	if !limiter.Check(ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLimiter(1, 150*time.Millisecond)
	defer limiter.Close()
	ip := "203.0.113.20"

	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Check(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLimiterIsPerKey(t *testing.T) {
	limiter := NewLimiter(1, 200*time.Millisecond)
	defer limiter.Close()

	limiter.Record("203.0.113.30")
	if !limiter.Check("203.0.113.31") {
		t.Fatalf("expected second key to be allowed independently")
	}
	if limiter.Check("203.0.113.30") {
		t.Fatalf("expected first key to be blocked after max")
	}
}

func TestLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewLimiter(1, 200*time.Millisecond)
	defer limiter.Close()
	key := "reset:someone@example.com"

	for i := 0; i < 5; i++ {
		if !limiter.Check(key) {
			t.Fatalf("check %d should not consume the budget", i)
		}
	}
	limiter.Record(key)
	if limiter.Check(key) {
		t.Fatalf("expected key to be blocked after recorded attempt")
	}
}
