package ratelimit

import (
	"context"
	"testing"
	"time"

	"eirybot-assistant-be/internal/repository/memory"
)

func newTestLimiter() (*Limiter, *time.Time) {
	l := NewLimiter(memory.NewRateLimitRepository(), nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.Now = func() time.Time { return now }
	return l, &now
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < DefaultMaxRequests; i++ {
		d := l.CheckAndRecord(ctx, "1.2.3.4")
		if !d.Allowed {
			t.Fatalf("request %d: expected allowed, got denied", i+1)
		}
		if d.RetryAfterMinutes != 0 {
			t.Fatalf("request %d: RetryAfterMinutes = %d, want 0", i+1, d.RetryAfterMinutes)
		}
	}
}

func TestLimiterBlocksOnExceeding(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < DefaultMaxRequests; i++ {
		l.CheckAndRecord(ctx, "1.2.3.4")
	}

	d := l.CheckAndRecord(ctx, "1.2.3.4")
	if d.Allowed {
		t.Fatal("request over the cap: expected denied")
	}
	if !d.FreshlyBlocked {
		t.Error("expected FreshlyBlocked on the triggering request")
	}
	if d.RetryAfterMinutes != 60 {
		t.Errorf("RetryAfterMinutes = %d, want 60", d.RetryAfterMinutes)
	}
}

func TestLimiterRetryAfterCountsDown(t *testing.T) {
	l, now := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < DefaultMaxRequests+1; i++ {
		l.CheckAndRecord(ctx, "1.2.3.4")
	}

	*now = now.Add(30 * time.Minute)
	d := l.CheckAndRecord(ctx, "1.2.3.4")
	if d.Allowed {
		t.Fatal("expected still blocked after 30 minutes")
	}
	if d.FreshlyBlocked {
		t.Error("a request during an existing block is not freshly blocked")
	}
	if d.RetryAfterMinutes != 30 {
		t.Errorf("RetryAfterMinutes = %d, want 30", d.RetryAfterMinutes)
	}

	// Partial minutes round up.
	*now = now.Add(29*time.Minute + 30*time.Second)
	d = l.CheckAndRecord(ctx, "1.2.3.4")
	if d.Allowed {
		t.Fatal("expected still blocked 30 seconds before the deadline")
	}
	if d.RetryAfterMinutes != 1 {
		t.Errorf("RetryAfterMinutes = %d, want 1", d.RetryAfterMinutes)
	}
}

func TestLimiterUnblocksAfterDeadline(t *testing.T) {
	l, now := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < DefaultMaxRequests+1; i++ {
		l.CheckAndRecord(ctx, "1.2.3.4")
	}

	*now = now.Add(61 * time.Minute)
	d := l.CheckAndRecord(ctx, "1.2.3.4")
	if !d.Allowed {
		t.Fatal("expected allowed after the block lapsed")
	}
}

func TestLimiterWindowResets(t *testing.T) {
	l, now := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.CheckAndRecord(ctx, "1.2.3.4")
	}

	// A fresh window forgets the old count entirely.
	*now = now.Add(61 * time.Second)
	for i := 0; i < DefaultMaxRequests; i++ {
		d := l.CheckAndRecord(ctx, "1.2.3.4")
		if !d.Allowed {
			t.Fatalf("request %d in new window: expected allowed", i+1)
		}
	}
	if d := l.CheckAndRecord(ctx, "1.2.3.4"); d.Allowed {
		t.Fatal("expected the new window to enforce its own cap")
	}
}

func TestLimiterTracksIdentifiersIndependently(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < DefaultMaxRequests+1; i++ {
		l.CheckAndRecord(ctx, "1.2.3.4")
	}

	if d := l.CheckAndRecord(ctx, "5.6.7.8"); !d.Allowed {
		t.Fatal("a block on one identifier must not affect another")
	}
}
