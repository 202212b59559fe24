package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"
)

// heavyResourceTypes are intercepted and failed when blocking is on.
var heavyResourceTypes = []network.ResourceType{
	network.ResourceTypeImage,
	network.ResourceTypeFont,
	network.ResourceTypeMedia,
	network.ResourceTypeStylesheet,
}

// Chromedp renders pages through the DevTools protocol.
type Chromedp struct {
	settings

	init singleflight.Group

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closed        bool
}

// NewChromedp creates a Chromedp renderer. No browser is started until
// the first Render call.
func NewChromedp(opts ...Option) *Chromedp {
	return &Chromedp{settings: newSettings(opts)}
}

// Render loads url in a fresh tab of the shared browser.
func (c *Chromedp) Render(ctx context.Context, url string, opts Options) (string, error) {
	opts = opts.withDefaults()

	browserCtx, err := c.browser()
	if err != nil {
		return "", err
	}

	return retry(ctx, c.logger, url, opts, func(ctx context.Context) (string, error) {
		return c.renderOnce(ctx, browserCtx, url, opts)
	})
}

func (c *Chromedp) renderOnce(ctx context.Context, browserCtx context.Context, url string, opts Options) (string, error) {
	// Tabs derive from the browser context; tie them to the caller too.
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if opts.BlockHeavyResources {
		if err := blockHeavy(tabCtx); err != nil {
			return "", fmt.Errorf("enable request interception: %w", err)
		}
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, opts.Timeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	if opts.WaitForSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, opts.Timeout)
		if err := chromedp.Run(waitCtx, chromedp.WaitVisible(opts.WaitForSelector, chromedp.ByQuery)); err != nil {
			c.logger.Debug("wait for selector timed out", "url", url, "selector", opts.WaitForSelector)
		}
		cancelWait()
	}

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Sleep(opts.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read html %s: %w", url, err)
	}
	return html, nil
}

// blockHeavy pauses heavy resource requests and fails each one.
func blockHeavy(tabCtx context.Context) error {
	patterns := make([]*fetch.RequestPattern, 0, len(heavyResourceTypes))
	for _, rt := range heavyResourceTypes {
		patterns = append(patterns, &fetch.RequestPattern{URLPattern: "*", ResourceType: rt})
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(tabCtx)
			if c == nil || c.Target == nil {
				return
			}
			execCtx := cdp.WithExecutor(tabCtx, c.Target)
			_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx) //nolint:errcheck // tab may already be gone
		}()
	})

	return chromedp.Run(tabCtx, fetch.Enable().WithPatterns(patterns))
}

// browser returns the shared browser context, launching it on first use.
func (c *Chromedp) browser() (context.Context, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.browserCtx != nil {
		ctx := c.browserCtx
		c.mu.Unlock()
		return ctx, nil
	}
	c.mu.Unlock()

	v, err, _ := c.init.Do("browser", func() (any, error) {
		c.mu.Lock()
		if c.browserCtx != nil {
			ctx := c.browserCtx
			c.mu.Unlock()
			return ctx, nil
		}
		c.mu.Unlock()

		path, err := findBrowser(c.execPath)
		if err != nil {
			return nil, err
		}

		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(path),
			chromedp.Flag("headless", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(c.userAgent),
			chromedp.WindowSize(viewportWidth, viewportHeight),
		)
		if c.proxy != "" {
			allocOpts = append(allocOpts, chromedp.ProxyServer(c.proxy))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

		start := time.Now()
		// Running with no actions starts the browser process.
		if err := chromedp.Run(browserCtx); err != nil {
			cancelBrowser()
			cancelAlloc()
			return nil, fmt.Errorf("%w: launch %s: %v", ErrUnavailable, path, err)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			cancelBrowser()
			cancelAlloc()
			return nil, ErrClosed
		}
		c.browserCtx = browserCtx
		c.cancelBrowser = cancelBrowser
		c.cancelAlloc = cancelAlloc
		c.logger.Debug("browser started", "engine", EngineChromedp, "bin", path, "elapsed", time.Since(start))
		return browserCtx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

// Close stops the browser. Errors during shutdown are ignored.
func (c *Chromedp) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancelBrowser != nil {
		c.cancelBrowser()
	}
	if c.cancelAlloc != nil {
		c.cancelAlloc()
	}
	c.browserCtx = nil
	c.cancelBrowser = nil
	c.cancelAlloc = nil
	return nil
}
