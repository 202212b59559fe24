package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nao1215/hotellens/internal/cache"
	"github.com/nao1215/hotellens/internal/extract"
	"github.com/nao1215/hotellens/internal/pipeline"
	"github.com/nao1215/hotellens/internal/render"
)

// PageFetcher downloads a page's HTML.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Waiter spaces requests to the same host.
type Waiter interface {
	Wait(ctx context.Context, url string) error
}

// Detail is what a detail page contributes besides the policy.
type Detail struct {
	Photos  []string `json:"photos"`
	Name    string   `json:"name,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
	Address string   `json:"address,omitempty"`
}

// Result is the enrichment of one listing. Fields are empty when the
// detail page could not be loaded.
type Result struct {
	PolicyText *string
	MinAge     *int
	Detail     Detail
}

type policyEntry struct {
	Text *string `json:"text"`
}

// Enricher loads detail pages and extracts policy and detail data.
type Enricher struct {
	fetcher    PageFetcher
	renderer   pipeline.HTMLRenderer
	renderOpts render.Options
	limiter    Waiter
	cache      *cache.Cache
	pages      singleflight.Group
	logger     *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithRenderer sets the headless renderer used by the policy cascade when
// a page only shows a bot wall or script.
func WithRenderer(r pipeline.HTMLRenderer) Option {
	return func(e *Enricher) {
		e.renderer = r
	}
}

// WithRenderOptions sets the base options for policy re-renders.
func WithRenderOptions(opts render.Options) Option {
	return func(e *Enricher) {
		e.renderOpts = opts
	}
}

// WithLimiter sets the per-host request spacer.
func WithLimiter(w Waiter) Option {
	return func(e *Enricher) {
		e.limiter = w
	}
}

// WithCache sets the cache for policy and detail results.
func WithCache(c *cache.Cache) Option {
	return func(e *Enricher) {
		e.cache = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// New creates an Enricher that downloads pages through fetcher.
func New(fetcher PageFetcher, opts ...Option) *Enricher {
	e := &Enricher{
		fetcher:    fetcher,
		renderOpts: render.DefaultOptions(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.New(cache.WithLogger(e.logger))
	}
	return e
}

// Enrich returns policy and detail data for the page at url.
// waitSelector is the CSS selector a re-render waits for.
//
// Enrich never fails: a page that cannot be loaded yields an empty
// Result. Nothing is cached for a page that could not be loaded or that
// stayed a bot wall, so a later search retries.
func (e *Enricher) Enrich(ctx context.Context, url, waitSelector string) Result {
	policy, policyHit := cache.GetJSON[policyEntry](ctx, e.cache, cache.NamespacePolicy, url)
	detail, detailHit := cache.GetJSON[Detail](ctx, e.cache, cache.NamespaceDetail, url)
	if policyHit && detailHit {
		return newResult(policy.Text, detail)
	}

	page, err := e.page(ctx, url)
	if err != nil {
		e.logger.Debug("detail page unavailable", "url", url, "error", err)
		if policyHit {
			return newResult(policy.Text, Detail{})
		}
		if detailHit {
			return newResult(nil, detail)
		}
		return Result{}
	}

	final := page
	var eg errgroup.Group
	if !policyHit {
		eg.Go(func() error {
			policy.Text, final = e.policy(ctx, url, waitSelector, page)
			return nil
		})
	}
	if !detailHit {
		eg.Go(func() error {
			detail = details(url, page)
			return nil
		})
	}
	_ = eg.Wait() //nolint:errcheck // goroutines never fail

	detailPage := page
	if !detailHit && page.Blocked() && !final.Blocked() {
		// the cascade re-rendered past the wall
		detail = details(url, final)
		detailPage = final
	}

	if !policyHit {
		if final.Blocked() {
			e.logger.Debug("policy not cached for blocked page", "url", url)
		} else {
			e.store(ctx, cache.NamespacePolicy, url, policy)
		}
	}
	if !detailHit && !detailPage.Blocked() {
		e.store(ctx, cache.NamespaceDetail, url, detail)
	}
	return newResult(policy.Text, detail)
}

func newResult(text *string, detail Detail) Result {
	r := Result{PolicyText: text, Detail: detail}
	if text != nil {
		r.MinAge = extract.MinAge(*text)
	}
	if r.Detail.Photos == nil {
		r.Detail.Photos = []string{}
	}
	return r
}

// page downloads and parses url. Concurrent calls for the same URL share
// one download.
func (e *Enricher) page(ctx context.Context, url string) (*extract.Page, error) {
	v, err, shared := e.pages.Do(url, func() (any, error) {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx, url); err != nil {
				return nil, err
			}
		}
		html, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return extract.Parse(html)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	if shared {
		e.logger.Debug("shared detail page download", "url", url)
	}
	return v.(*extract.Page), nil
}

// policy runs the cascade and returns its answer together with the page
// it ended on, which differs from page after a re-render.
func (e *Enricher) policy(ctx context.Context, url, waitSelector string, page *extract.Page) (*string, *extract.Page) {
	state := &pipeline.PolicyState{URL: url, WaitSelector: waitSelector, Page: page}
	p := pipeline.NewPolicyPipeline(e.renderer, e.renderOpts, e.logger, url)
	step, err := p.Execute(ctx, state)
	if err != nil {
		e.logger.Debug("policy cascade stopped", "url", url, "step", step, "error", err)
	}
	return state.PolicyText(), state.Page
}

func details(url string, page *extract.Page) Detail {
	facts := page.Facts()
	return Detail{
		Photos:  page.ImageURLs(url),
		Name:    facts.Name,
		Lat:     facts.Lat,
		Lng:     facts.Lng,
		Rating:  facts.Rating,
		Address: facts.Address,
	}
}

func (e *Enricher) store(ctx context.Context, ns cache.Namespace, key string, v any) {
	if err := cache.SetJSON(ctx, e.cache, ns, key, v, 0); err != nil {
		e.logger.Debug("cache store failed", "namespace", ns.Name, "error", err)
	}
}
