package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestLimiterSameHost verifies that back-to-back requests to one host
// are spaced by at least the configured interval.
func TestLimiterSameHost(t *testing.T) {
	t.Parallel()

	interval := 150 * time.Millisecond
	l := New(WithInterval(interval))
	ctx := context.Background()

	if err := l.Wait(ctx, "https://www.booking.com/a"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	first := time.Now()
	if err := l.Wait(ctx, "https://www.booking.com/b?x=1"); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	// Allow a little scheduler slack below the nominal interval.
	if gap := time.Since(first); gap < interval-20*time.Millisecond {
		t.Errorf("expected gap of about %v, got %v", interval, gap)
	}
}

// TestLimiterDifferentHosts verifies that hosts do not delay each other.
func TestLimiterDifferentHosts(t *testing.T) {
	t.Parallel()

	l := New(WithInterval(time.Second))
	ctx := context.Background()

	start := time.Now()
	for _, u := range []string{"https://a.example.com/", "https://b.example.com/", "https://c.example.com/"} {
		if err := l.Wait(ctx, u); err != nil {
			t.Fatalf("wait for %s failed: %v", u, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("different hosts should not wait, took %v", elapsed)
	}
	if l.Hosts() != 3 {
		t.Errorf("expected 3 tracked hosts, got %d", l.Hosts())
	}
}

func TestLimiterMalformedURL(t *testing.T) {
	t.Parallel()

	l := New(WithInterval(time.Hour))
	for _, u := range []string{"", "::not a url", "/relative/path"} {
		if err := l.Wait(context.Background(), u); err != nil {
			t.Errorf("Wait(%q) should be a no-op, got %v", u, err)
		}
	}
	if l.Hosts() != 0 {
		t.Errorf("malformed URLs should not be tracked, got %d hosts", l.Hosts())
	}
}

func TestLimiterContextCanceled(t *testing.T) {
	t.Parallel()

	l := New(WithInterval(time.Hour))
	if err := l.Wait(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, "https://example.com/"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
