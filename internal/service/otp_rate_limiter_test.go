package service

import (
	"context"
	"testing"
	"time"
)

func TestOTPRateLimiter_SlidingWindow(t *testing.T) {
	l := NewOTPRateLimiter(2*time.Minute, 2).(*otpRateLimiter)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	if !l.Allow(ctx, "ana@x.io") || !l.Allow(ctx, " ANA@x.io ") {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow(ctx, "ana@x.io") {
		t.Fatalf("expected third request inside window to be denied")
	}
	if !l.Allow(ctx, "bob@x.io") {
		t.Fatalf("limits are per key")
	}

	l.now = func() time.Time { return base.Add(2*time.Minute + time.Second) }
	if !l.Allow(ctx, "ana@x.io") {
		t.Fatalf("expected request after window to pass")
	}
}

func TestOTPRateLimiter_Defaults(t *testing.T) {
	l := NewOTPRateLimiter(0, 0).(*otpRateLimiter)
	if l.max != 1 || l.window != time.Minute {
		t.Fatalf("unexpected defaults: max=%d window=%s", l.max, l.window)
	}
	if l.Allow(context.Background(), "") {
		t.Fatalf("empty key must be rejected")
	}
}
