package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fandomtools/wikicrawl/internal/urlutil"
)

func TestLimiterWaitIfNeeded(t *testing.T) {
	t.Parallel()

	t.Run("first request returns immediately", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(5 * time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		start := time.Now()
		if err := limiter.WaitIfNeeded(context.Background(), "https://a.example/page"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("first request should not wait, took %v", elapsed)
		}
	})

	t.Run("second request waits the full delay", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(50 * time.Millisecond)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		ctx := context.Background()
		if err := limiter.WaitIfNeeded(ctx, "https://a.example/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		start := time.Now()
		if err := limiter.WaitIfNeeded(ctx, "https://a.example/2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
			t.Errorf("expected wait of ~50ms, got %v", elapsed)
		}
	})

	t.Run("different domains do not wait on each other", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(5 * time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		ctx := context.Background()
		if err := limiter.WaitIfNeeded(ctx, "https://a.example/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		start := time.Now()
		if err := limiter.WaitIfNeeded(ctx, "https://b.example/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("fresh domain should not wait, took %v", elapsed)
		}
	})

	t.Run("case-insensitive domain keying", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		var slept time.Duration
		limiter.sleep = func(_ context.Context, d time.Duration) error {
			slept += d
			return nil
		}

		ctx := context.Background()
		if err := limiter.WaitIfNeeded(ctx, "https://A.Example/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := limiter.WaitIfNeeded(ctx, "https://a.example/2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slept != time.Second {
			t.Errorf("expected the second request to wait 1s, slept %v", slept)
		}
	})

	t.Run("per-domain override takes effect", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		var slept time.Duration
		limiter.sleep = func(_ context.Context, d time.Duration) error {
			slept += d
			return nil
		}

		if err := limiter.SetDomainDelay("a.example", 3*time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx := context.Background()
		_ = limiter.WaitIfNeeded(ctx, "https://a.example/1")
		_ = limiter.WaitIfNeeded(ctx, "https://a.example/2")
		if slept != 3*time.Second {
			t.Errorf("expected override delay 3s, slept %v", slept)
		}
	})

	t.Run("invalid URL rejected", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		if err := limiter.WaitIfNeeded(context.Background(), "not a url"); err == nil {
			t.Error("expected validation error for invalid URL")
		}
		if err := limiter.WaitIfNeeded(context.Background(), "ftp://a.example/f"); !errors.Is(err, urlutil.ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		t.Parallel()

		limiter, err := NewLimiter(10 * time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		if err := limiter.WaitIfNeeded(ctx, "https://a.example/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cancel()

		if err := limiter.WaitIfNeeded(ctx, "https://a.example/2"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLimiterConstruction(t *testing.T) {
	t.Parallel()

	if _, err := NewLimiter(0); !errors.Is(err, ErrNonPositiveDelay) {
		t.Errorf("expected ErrNonPositiveDelay for zero delay, got %v", err)
	}
	if _, err := NewLimiter(-time.Second); !errors.Is(err, ErrNonPositiveDelay) {
		t.Errorf("expected ErrNonPositiveDelay for negative delay, got %v", err)
	}
}

func TestSetDomainDelayValidation(t *testing.T) {
	t.Parallel()

	limiter, err := NewLimiter(time.Second)
	if err != nil {
		t.Fatalf("failed to create limiter: %v", err)
	}
	if err := limiter.SetDomainDelay("a.example", 0); !errors.Is(err, ErrNonPositiveDelay) {
		t.Errorf("expected ErrNonPositiveDelay, got %v", err)
	}
}

func TestDomainStats(t *testing.T) {
	t.Parallel()

	limiter, err := NewLimiter(2 * time.Second)
	if err != nil {
		t.Fatalf("failed to create limiter: %v", err)
	}

	t.Run("unknown domain reports defaults", func(t *testing.T) {
		stats := limiter.DomainStats("unknown.example")
		if stats.RequestCount != 0 {
			t.Errorf("expected 0 requests, got %d", stats.RequestCount)
		}
		if !stats.LastRequestTime.IsZero() {
			t.Error("expected zero last request time")
		}
		if stats.Delay != 2*time.Second {
			t.Errorf("expected default delay, got %v", stats.Delay)
		}
	})

	t.Run("records accumulate", func(t *testing.T) {
		if err := limiter.RecordRequest("https://stats.example/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := limiter.RecordRequest("https://stats.example/2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stats := limiter.DomainStats("stats.example")
		if stats.RequestCount != 2 {
			t.Errorf("expected 2 requests, got %d", stats.RequestCount)
		}
		if stats.LastRequestTime.IsZero() {
			t.Error("expected last request time to be set")
		}
	})

	t.Run("old timestamps are pruned", func(t *testing.T) {
		pruner, err := NewLimiter(time.Second)
		if err != nil {
			t.Fatalf("failed to create limiter: %v", err)
		}

		current := time.Now()
		pruner.now = func() time.Time { return current }
		_ = pruner.RecordRequest("https://prune.example/1")

		current = current.Add(2 * time.Minute)
		_ = pruner.RecordRequest("https://prune.example/2")

		if got := pruner.DomainStats("prune.example").RequestCount; got != 1 {
			t.Errorf("expected stale timestamp pruned, got count %d", got)
		}
	})
}
