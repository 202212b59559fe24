package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Default rendering parameters.
const (
	DefaultTimeout = 15 * time.Second
	DefaultRetries = 2
	DefaultSettle  = 300 * time.Millisecond

	// DefaultUserAgent identifies the browser as desktop Chrome.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari hotel-lens/1.0"

	viewportWidth  = 1280
	viewportHeight = 800
)

var (
	// ErrUnavailable means no browser binary could be found or started.
	ErrUnavailable = errors.New("headless browser unavailable")

	// ErrExhausted means every attempt to render the page failed.
	ErrExhausted = errors.New("render retries exhausted")

	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("renderer closed")
)

// Options control a single Render call.
type Options struct {
	// Timeout bounds navigation for each attempt.
	Timeout time.Duration

	// Retries is the number of attempts; values below 1 mean 1.
	Retries int

	// WaitForSelector is waited for after navigation. Not finding it
	// before Timeout is not an error.
	WaitForSelector string

	// BlockHeavyResources aborts image, font, media and stylesheet
	// requests.
	BlockHeavyResources bool

	// Settle is a fixed pause after load so late scripts can finish.
	Settle time.Duration
}

// DefaultOptions returns the options used when a caller has no opinion.
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
		Settle:  DefaultSettle,
	}
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 1 {
		o.Retries = 1
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	return o
}

// Renderer returns the rendered HTML of a page.
type Renderer interface {
	// Render loads url and returns the document's outer HTML.
	Render(ctx context.Context, url string, opts Options) (string, error)

	// Close shuts the browser down. It is safe to call more than once.
	Close() error
}

// New returns the engine named by engine ("chromedp" or "rod").
func New(engine string, opts ...Option) (Renderer, error) {
	switch engine {
	case "", EngineChromedp:
		return NewChromedp(opts...), nil
	case EngineRod:
		return NewRod(opts...), nil
	default:
		return nil, fmt.Errorf("unknown render engine %q", engine)
	}
}

// Engine names accepted by New.
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// settings are shared by both engines.
type settings struct {
	execPath  string
	userAgent string
	proxy     string
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*settings)

// WithExecPath points the engine at a specific browser binary.
func WithExecPath(path string) Option {
	return func(s *settings) {
		s.execPath = path
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithProxy routes browser traffic through a proxy URL.
func WithProxy(proxyURL string) Option {
	return func(s *settings) {
		s.proxy = proxyURL
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// browserNames are looked up on PATH when no binary is configured.
var browserNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

// findBrowser resolves the browser binary or returns ErrUnavailable.
func findBrowser(configured string) (string, error) {
	if configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, configured, err)
		}
		return path, nil
	}
	for _, name := range browserNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no chromium-family binary on PATH", ErrUnavailable)
}

// attemptFunc performs one render attempt.
type attemptFunc func(ctx context.Context) (string, error)

// retry runs attempt up to opts.Retries times with linear backoff
// (250ms, 550ms, 850ms, ...) between failures. ErrUnavailable and
// ErrClosed are returned immediately.
func retry(ctx context.Context, logger *slog.Logger, url string, opts Options, attempt attemptFunc) (string, error) {
	var lastErr error
	for i := range opts.Retries {
		html, err := attempt(ctx)
		if err == nil {
			return html, nil
		}
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrClosed) {
			return "", err
		}
		lastErr = err
		logger.Debug("render attempt failed",
			"url", url,
			"attempt", i+1,
			"retries", opts.Retries,
			"error", err,
		)

		if i == opts.Retries-1 {
			break
		}
		backoff := 250*time.Millisecond + time.Duration(i)*300*time.Millisecond
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", ErrExhausted, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("%w: %s: %w", ErrExhausted, url, lastErr)
}
