package http

import "testing"

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := newRateLimiter(3)

	for i := 0; i < 3; i++ {
		if !limiter.allow() {
			t.Fatalf("message %d should be allowed", i)
		}
	}
	if limiter.allow() {
		t.Fatal("message over the limit should be dropped")
	}
}

func TestRateLimiterZeroDisablesLimit(t *testing.T) {
	limiter := newRateLimiter(0)

	for i := 0; i < 1000; i++ {
		if !limiter.allow() {
			t.Fatalf("message %d should be allowed with the limit disabled", i)
		}
	}
}
