package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/hotellens/internal/challenge"
	"github.com/nao1215/hotellens/internal/render"
)

// Fetcher defaults.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxBodySize = 8 << 20

	// DefaultUserAgent is a current desktop Chrome user agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Renderer is the headless fallback used for challenge pages.
type Renderer interface {
	Render(ctx context.Context, url string, opts render.Options) (string, error)
}

// Fetcher retrieves HTML pages.
type Fetcher struct {
	client        *http.Client
	renderer      Renderer
	renderOptions render.Options
	userAgent     string
	timeout       time.Duration
	maxBodySize   int64
	sites         map[string]SiteHeaders
	logger        *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithRenderer sets the headless fallback for challenge pages.
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) {
		f.renderer = r
	}
}

// WithRenderOptions sets the options used for challenge fallback renders.
func WithRenderOptions(opts render.Options) Option {
	return func(f *Fetcher) {
		f.renderOptions = opts
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize limits how much of a response body is read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithSiteHeaders injects headers and a cookie into requests for host.
func WithSiteHeaders(host string, site SiteHeaders) Option {
	return func(f *Fetcher) {
		f.sites[strings.ToLower(host)] = site
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		renderOptions: render.DefaultOptions(),
		userAgent:     DefaultUserAgent,
		timeout:       DefaultTimeout,
		maxBodySize:   DefaultMaxBodySize,
		sites:         make(map[string]SiteHeaders),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		client, _ := NewHTTPClient("", f.timeout) //nolint:errcheck // no proxy cannot fail
		f.client = client
	}
	if len(f.sites) > 0 {
		base := f.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clone := *f.client
		clone.Transport = &siteHeaderTransport{base: base, sites: f.sites}
		f.client = &clone
	}
	return f
}

// Fetch returns the HTML at url.
//
// A non-2xx status is logged and its body returned. When the body looks
// like a bot-protection page the renderer is tried; its HTML replaces the
// original only when rendering succeeds. A transport failure returns an
// error wrapping ErrTransport.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, status, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}

	if status < 200 || status > 299 {
		f.logger.Warn("non-success status", "url", url, "status", status)
	}

	if marker := challenge.Marker(body); marker != "" {
		f.logger.Debug("challenge page detected", "url", url, "status", status, "marker", marker)
		if rendered, ok := f.renderFallback(ctx, url); ok {
			return rendered, nil
		}
	}
	return body, nil
}

// Render loads url in the headless browser directly. It returns
// render.ErrUnavailable when no renderer is configured.
func (f *Fetcher) Render(ctx context.Context, url string, opts render.Options) (string, error) {
	if f.renderer == nil {
		return "", render.ErrUnavailable
	}
	return f.renderer.Render(ctx, url, opts)
}

func (f *Fetcher) renderFallback(ctx context.Context, url string) (string, bool) {
	if f.renderer == nil {
		return "", false
	}
	html, err := f.renderer.Render(ctx, url, f.renderOptions)
	if err != nil {
		if errors.Is(err, render.ErrUnavailable) {
			f.logger.Debug("renderer unavailable", "url", url)
		} else {
			f.logger.Warn("render fallback failed", "url", url, "error", err)
		}
		return "", false
	}
	if html == "" {
		return "", false
	}
	return html, true
}

func (f *Fetcher) get(ctx context.Context, url string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: build request for %s: %v", ErrTransport, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: GET %s: %w", ErrTransport, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("%w: read body of %s: %w", ErrTransport, url, err)
	}
	return string(data), resp.StatusCode, nil
}
