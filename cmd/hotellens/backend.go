package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotellens/internal/cache"
	"github.com/nao1215/hotellens/internal/config"
	"github.com/nao1215/hotellens/internal/enrich"
	"github.com/nao1215/hotellens/internal/fetch"
	hlog "github.com/nao1215/hotellens/internal/log"
	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/provider"
	"github.com/nao1215/hotellens/internal/ratelimit"
	"github.com/nao1215/hotellens/internal/render"
	"github.com/nao1215/hotellens/internal/search"
)

// addBackendFlags registers the flags shared by search and serve.
func addBackendFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "P", config.DefaultProvider,
		"Search provider: mock, booking or expedia")
	cmd.Flags().String("failure-policy", config.DefaultFailurePolicy,
		"What a failed provider search returns: error, empty or mock")
	cmd.Flags().String("cache", "",
		"Durable cache: memory, sqlite, sqlite:///path, redis://... or postgres://...")
	cmd.Flags().Bool("scraping", true,
		"Enable the scraping providers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("render-engine", config.DefaultRenderEngine,
		"Headless browser driver: chromedp, rod or none")
	cmd.Flags().Duration("render-timeout", render.DefaultTimeout,
		"Navigation timeout of the headless browser")
	cmd.Flags().Int("render-retries", render.DefaultRetries,
		"Number of render attempts per page")
	cmd.Flags().String("browser", "",
		"Path to a Chromium-family browser (default: search PATH)")
	cmd.Flags().String("proxy", "",
		"Route requests through a proxy (socks5://host:port or http://host:port)")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of hotel pages enriched at once")
	cmd.Flags().Duration("min-interval", config.DefaultMinInterval,
		"Minimum delay between requests to one host")
	cmd.Flags().String("user-agent", fetch.DefaultUserAgent,
		"User-Agent sent with HTTP requests")
}

// buildConfig creates a Config from defaults, the environment and the
// flags of cmd, in increasing precedence. Only flags the user set
// override environment values.
func buildConfig(cmd *cobra.Command, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		err = apply()
	}

	set("provider", func() (e error) { cfg.Provider, e = flags.GetString("provider"); return })
	set("failure-policy", func() (e error) { cfg.FailurePolicy, e = flags.GetString("failure-policy"); return })
	set("cache", func() (e error) { cfg.CacheBackend, e = flags.GetString("cache"); return })
	set("scraping", func() (e error) { cfg.ScrapingEnabled, e = flags.GetBool("scraping"); return })
	set("timeout", func() (e error) { cfg.Timeout, e = flags.GetDuration("timeout"); return })
	set("render-engine", func() (e error) { cfg.RenderEngine, e = flags.GetString("render-engine"); return })
	set("render-timeout", func() (e error) { cfg.RenderTimeout, e = flags.GetDuration("render-timeout"); return })
	set("render-retries", func() (e error) { cfg.RenderRetries, e = flags.GetInt("render-retries"); return })
	set("browser", func() (e error) { cfg.BrowserPath, e = flags.GetString("browser"); return })
	set("proxy", func() (e error) { cfg.Proxy, e = flags.GetString("proxy"); return })
	set("concurrency", func() (e error) { cfg.Concurrency, e = flags.GetInt("concurrency"); return })
	set("min-interval", func() (e error) { cfg.MinInterval, e = flags.GetDuration("min-interval"); return })
	if err != nil {
		return nil, err
	}

	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	cfg.Verbose = inheritedFlag(cmd, "verbose") == "true"
	if v := inheritedFlag(cmd, "log-format"); v != "" {
		cfg.LogFormat = v
	}
	cfg.ConfigFilePath = inheritedFlag(cmd, "config")
	cfg.Provider = strings.ToLower(cfg.Provider)
	cfg.FailurePolicy = strings.ToLower(cfg.FailurePolicy)

	if cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// inheritedFlag returns the value of a flag declared on cmd or one of its
// parents, or "" when no such flag exists.
func inheritedFlag(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// loadSiteConfigs reads the YAML config file. An explicitly named file
// must exist; otherwise a missing file yields an empty configuration.
func loadSiteConfigs(explicitPath string) (*config.File, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
		}
		return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
	}
	cf, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return cf, nil
}

// setupLogger creates the redacting logger selected by cfg.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return hlog.NewLogger(w, cfg.LogFormat, cfg.Verbose)
}

// backend holds the long-lived components behind a search service.
type backend struct {
	service  *search.Service
	cache    *cache.Cache
	renderer render.Renderer
}

// newBackend wires the cache, fetcher, renderer, rate limiter and
// providers described by cfg into a search service.
func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	store, err := cache.OpenStore(ctx, cfg.CacheBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	b := &backend{
		cache: cache.New(cache.WithDurable(store), cache.WithLogger(logger)),
	}
	if store != nil {
		logger.Info("durable cache opened", "backend", cfg.CacheBackend)
	}

	renderOpts := render.DefaultOptions()
	renderOpts.Timeout = cfg.RenderTimeout
	renderOpts.Retries = cfg.RenderRetries

	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithRenderOptions(renderOpts),
		fetch.WithLogger(logger),
	}
	if cfg.RenderEnabled() {
		b.renderer, err = render.New(cfg.RenderEngine,
			render.WithExecPath(cfg.BrowserPath),
			render.WithProxy(cfg.Proxy),
			render.WithLogger(logger),
		)
		if err != nil {
			_ = b.Close() //nolint:errcheck // already failing
			return nil, err
		}
		fetchOpts = append(fetchOpts, fetch.WithRenderer(b.renderer))
	}

	client, err := fetch.NewHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		_ = b.Close() //nolint:errcheck // already failing
		return nil, err
	}
	fetchOpts = append(fetchOpts, fetch.WithHTTPClient(client))

	sites := make([]*provider.Site, 0, 2)
	for _, name := range []model.Source{model.SourceBooking, model.SourceExpedia} {
		site, _ := provider.SourceFor(name)
		sc := cfg.SiteConfigs.GetSiteConfig(string(name))
		if sc.SearchURL != "" {
			site = site.WithSearchURL(sc.SearchURL)
		}
		if sc.ListingSelector != "" || sc.PolicySelector != "" {
			site = site.WithSelectors(sc.ListingSelector, sc.PolicySelector)
		}
		if sc.Cookie != "" || len(sc.Headers) > 0 {
			if host := siteHost(site); host != "" {
				fetchOpts = append(fetchOpts, fetch.WithSiteHeaders(host, fetch.SiteHeaders{
					Headers: sc.Headers,
					Cookie:  sc.Cookie,
				}))
			}
		}
		sites = append(sites, site)
	}

	fetcher := fetch.New(fetchOpts...)
	limiter := ratelimit.New(ratelimit.WithInterval(cfg.MinInterval), ratelimit.WithLogger(logger))

	enrichOpts := []enrich.Option{
		enrich.WithRenderOptions(renderOpts),
		enrich.WithLimiter(limiter),
		enrich.WithCache(b.cache),
		enrich.WithLogger(logger),
	}
	if b.renderer != nil {
		enrichOpts = append(enrichOpts, enrich.WithRenderer(fetcher))
	}
	enricher := enrich.New(fetcher, enrichOpts...)

	policy, _ := search.ParseFailurePolicy(cfg.FailurePolicy)
	active, _ := model.ParseSource(cfg.Provider)
	serviceOpts := []search.Option{
		search.WithActive(active),
		search.WithFailurePolicy(policy),
		search.WithCache(b.cache),
		search.WithLogger(logger),
	}
	for _, site := range sites {
		name := string(site.Name())
		sc := cfg.SiteConfigs.GetSiteConfig(name)
		concurrency := cfg.Concurrency
		if sc.Concurrency > 0 {
			concurrency = sc.Concurrency
		}
		scraper := provider.NewScraper(site, fetcher,
			provider.WithLogger(logger),
			provider.WithEnricher(enricher),
			provider.WithLimiter(limiter),
			provider.WithCache(b.cache),
			provider.WithConcurrency(concurrency),
			provider.WithEnabled(cfg.SiteConfigs.SiteEnabled(name, cfg.ScrapingEnabled)),
		)
		serviceOpts = append(serviceOpts, search.WithProvider(scraper))
	}

	b.service = search.New(serviceOpts...)
	return b, nil
}

// siteHost returns the host a site's search pages are served from.
func siteHost(site *provider.Site) string {
	u, err := url.Parse(site.SearchURL(model.SearchParams{}.WithDefaults()))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Close releases the browser and the durable cache.
func (b *backend) Close() error {
	var errs []error
	if b.renderer != nil {
		errs = append(errs, b.renderer.Close())
	}
	if b.cache != nil {
		errs = append(errs, b.cache.Close())
	}
	return errors.Join(errs...)
}
