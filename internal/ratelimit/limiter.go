package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MinInterval is the default minimum gap between two requests to one host.
const MinInterval = 400 * time.Millisecond

// Limiter manages per-host request spacing.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
	logger   *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithInterval overrides the minimum gap between requests to one host.
// A non-positive interval disables limiting.
func WithInterval(d time.Duration) Option {
	return func(l *Limiter) {
		l.interval = d
	}
}

// WithLogger sets the logger used for wait diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// New creates a Limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*rate.Limiter),
		interval: MinInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until a request to rawURL's host may proceed.
// A URL without a parsable host is a no-op and never blocks.
// The only error is a cancelled or expired context.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" || l.interval <= 0 {
		return nil
	}

	limiter := l.forHost(host)
	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		l.logger.Debug("rate limited", "host", host, "waited", waited)
	}
	return nil
}

// Hosts returns the number of hosts currently tracked.
func (l *Limiter) Hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[host] = limiter
	}
	return limiter
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
