package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/singleflight"
)

// heavyURLPatterns approximate heavy resource types by extension, since
// Network.setBlockedURLs matches URLs only.
var heavyURLPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.avif", "*.svg", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3",
	"*.css",
}

// Rod renders pages with go-rod.
type Rod struct {
	settings

	init singleflight.Group

	mu      sync.Mutex
	browser *rod.Browser
	stop    func()
	closed  bool
}

// NewRod creates a Rod renderer. No browser is started until the first
// Render call.
func NewRod(opts ...Option) *Rod {
	return &Rod{settings: newSettings(opts)}
}

// Render loads url in a fresh page of the shared browser.
func (r *Rod) Render(ctx context.Context, url string, opts Options) (string, error) {
	opts = opts.withDefaults()

	browser, err := r.connect()
	if err != nil {
		return "", err
	}

	return retry(ctx, r.logger, url, opts, func(ctx context.Context) (string, error) {
		return r.renderOnce(ctx, browser, url, opts)
	})
}

func (r *Rod) renderOnce(ctx context.Context, browser *rod.Browser, url string, opts Options) (string, error) {
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() {
		_ = page.Close() //nolint:errcheck // best-effort tab cleanup
	}()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
		r.logger.Debug("set user agent failed", "url", url, "error", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		r.logger.Debug("set viewport failed", "url", url, "error", err)
	}
	if opts.BlockHeavyResources {
		if err := (proto.NetworkSetBlockedURLs{Urls: heavyURLPatterns}).Call(page); err != nil {
			r.logger.Debug("set blocked urls failed", "url", url, "error", err)
		}
	}

	nav := page.Timeout(opts.Timeout)
	if err := nav.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := nav.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load %s: %w", url, err)
	}

	if opts.WaitForSelector != "" {
		if _, err := page.Timeout(opts.Timeout).Element(opts.WaitForSelector); err != nil {
			r.logger.Debug("wait for selector timed out", "url", url, "selector", opts.WaitForSelector)
		}
	}

	if opts.Settle > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(opts.Settle):
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read html %s: %w", url, err)
	}
	return html, nil
}

// connect returns the shared browser, launching it on first use.
func (r *Rod) connect() (*rod.Browser, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if r.browser != nil {
		b := r.browser
		r.mu.Unlock()
		return b, nil
	}
	r.mu.Unlock()

	v, err, _ := r.init.Do("browser", func() (any, error) {
		r.mu.Lock()
		if r.browser != nil {
			b := r.browser
			r.mu.Unlock()
			return b, nil
		}
		r.mu.Unlock()

		bin := r.execPath
		if bin == "" {
			found, ok := launcher.LookPath()
			if !ok {
				return nil, fmt.Errorf("%w: no chromium-family binary found", ErrUnavailable)
			}
			bin = found
		} else if _, err := findBrowser(bin); err != nil {
			return nil, err
		}

		l := launcher.New().
			Headless(true).
			Bin(bin).
			NoSandbox(true)
		if r.proxy != "" {
			l = l.Proxy(r.proxy)
		}

		controlURL, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: launch %s: %v", ErrUnavailable, bin, err)
		}
		stop := stopLauncher(l)

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			stop()
			return nil, fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			_ = browser.Close() //nolint:errcheck // closed while launching
			stop()
			return nil, ErrClosed
		}
		r.browser = browser
		r.stop = stop
		r.logger.Debug("browser started", "engine", EngineRod, "bin", bin)
		return browser, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rod.Browser), nil
}

// stopLauncher kills the launched process and removes its temporary
// user data directory.
func stopLauncher(l *launcher.Launcher) func() {
	return func() {
		l.Kill()
		l.Cleanup()
	}
}

// Close stops the browser and its process. Errors during shutdown are
// ignored.
func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.browser != nil {
		_ = r.browser.Close() //nolint:errcheck // shutdown is best-effort
		r.browser = nil
	}
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
	return nil
}
