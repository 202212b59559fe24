package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/hotellens/internal/cache"
	"github.com/nao1215/hotellens/internal/challenge"
	"github.com/nao1215/hotellens/internal/enrich"
	"github.com/nao1215/hotellens/internal/extract"
	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/pipeline"
	"github.com/nao1215/hotellens/internal/render"
)

// errNoCoordinates marks a listing whose position stayed unknown after
// enrichment. Such listings cannot be placed and are dropped.
var errNoCoordinates = errors.New("listing has no coordinates")

// Fetcher downloads pages and renders them in a browser on demand.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Render(ctx context.Context, url string, opts render.Options) (string, error)
}

// Waiter spaces requests to the same host.
type Waiter interface {
	Wait(ctx context.Context, url string) error
}

// Scraper is a Provider that scrapes one travel site.
type Scraper struct {
	source   Source
	fetcher  Fetcher
	enricher *enrich.Enricher
	limiter  Waiter
	cache    *cache.Cache
	batch    *pipeline.BatchProcessor
	workers  int
	enabled  bool
	logger   *slog.Logger
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithEnricher sets the detail page enricher.
func WithEnricher(e *enrich.Enricher) ScraperOption {
	return func(s *Scraper) {
		s.enricher = e
	}
}

// WithLimiter sets the per-host request spacer for search pages.
func WithLimiter(w Waiter) ScraperOption {
	return func(s *Scraper) {
		s.limiter = w
	}
}

// WithCache sets the cache for search results.
func WithCache(c *cache.Cache) ScraperOption {
	return func(s *Scraper) {
		s.cache = c
	}
}

// WithConcurrency bounds how many listings are enriched at once.
func WithConcurrency(n int) ScraperOption {
	return func(s *Scraper) {
		s.workers = n
	}
}

// WithEnabled turns scraping on or off. A disabled Scraper returns no
// hotels without touching the network.
func WithEnabled(enabled bool) ScraperOption {
	return func(s *Scraper) {
		s.enabled = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ScraperOption {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// NewScraper creates a Scraper for source that downloads through fetcher.
func NewScraper(source Source, fetcher Fetcher, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		source:  source,
		fetcher: fetcher,
		enabled: true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithLogger(s.logger))
	}
	s.batch = pipeline.NewBatchProcessor(
		pipeline.WithConcurrency(s.workers),
		pipeline.WithBatchLogger(s.logger),
	)
	if s.enricher == nil {
		s.enricher = enrich.New(fetcher,
			enrich.WithRenderer(fetcher),
			enrich.WithLimiter(s.limiter),
			enrich.WithCache(s.cache),
			enrich.WithLogger(s.logger),
		)
	}
	return s
}

// Name implements Provider.
func (s *Scraper) Name() model.Source {
	return s.source.Name()
}

// Search implements Provider.
//
// An error wrapping ErrSearchFailed is returned when the search page
// cannot be downloaded or stays blocked (ErrBlocked). Failed searches are
// not cached. Listings whose detail pages fail are still returned with
// unknown policy; listings without coordinates are dropped.
func (s *Scraper) Search(ctx context.Context, params model.SearchParams) ([]model.Hotel, error) {
	params = params.WithDefaults()
	if !s.enabled {
		s.logger.Debug("scraping disabled", "provider", s.Name())
		return []model.Hotel{}, nil
	}

	key := SearchKey(s.Name(), params)
	if hotels, ok := cache.GetJSON[[]model.Hotel](ctx, s.cache, cache.NamespaceSearch, key); ok {
		return hotels, nil
	}

	start := time.Now()
	listings, err := s.listings(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSearchFailed, s.Name(), err)
	}
	if len(listings) > params.Limit {
		listings = listings[:params.Limit]
	}

	enriched, errs := pipeline.Map(ctx, s.batch, listings, s.hotel)
	hotels := make([]model.Hotel, 0, len(enriched))
	for i, h := range enriched {
		if errs[i] != nil {
			s.logger.Debug("listing dropped", "url", listings[i].DetailURL, "error", errs[i])
			continue
		}
		hotels = append(hotels, h)
	}
	hotels = rank(hotels, params)

	s.logger.Info("site search finished",
		"provider", s.Name(),
		"listings", len(listings),
		"hotels", len(hotels),
		"elapsed", time.Since(start),
	)

	if err := cache.SetJSON(ctx, s.cache, cache.NamespaceSearch, key, hotels, 0); err != nil {
		s.logger.Debug("search cache store failed", "error", err)
	}
	return hotels, nil
}

// listings scrapes the search page. When the plain download yields no
// listings the page is rendered once in the browser and parsed again.
// Zero listings from a page that is still a bot wall is ErrBlocked.
func (s *Scraper) listings(ctx context.Context, params model.SearchParams) ([]model.Listing, error) {
	searchURL := s.source.SearchURL(params)
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, searchURL); err != nil {
			return nil, err
		}
	}

	html, err := s.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	listings, err := s.parse(html, searchURL)
	if err != nil {
		return nil, err
	}
	if len(listings) > 0 {
		return listings, nil
	}

	opts := render.DefaultOptions()
	opts.WaitForSelector = s.source.ListingSelector()
	opts.BlockHeavyResources = true
	rendered, err := s.fetcher.Render(ctx, searchURL, opts)
	if err != nil {
		s.logger.Debug("search render escalation failed", "url", searchURL, "error", err)
		if challenge.Detect(html) {
			return nil, ErrBlocked
		}
		return listings, nil
	}
	listings, err = s.parse(rendered, searchURL)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 && challenge.Detect(rendered) {
		return nil, ErrBlocked
	}
	return listings, nil
}

func (s *Scraper) parse(html, pageURL string) ([]model.Listing, error) {
	page, err := extract.Parse(html)
	if err != nil {
		return nil, err
	}
	return s.source.ParseListings(page.Document(), pageURL), nil
}

// hotel enriches one listing into a Hotel.
func (s *Scraper) hotel(ctx context.Context, l model.Listing) (model.Hotel, error) {
	r := s.enricher.Enrich(ctx, l.DetailURL, s.source.PolicySelector())

	lat, lng := l.Lat, l.Lng
	if !l.HasCoordinates() {
		lat, lng = r.Detail.Lat, r.Detail.Lng
	}
	if lat == nil || lng == nil {
		return model.Hotel{}, errNoCoordinates
	}

	h := model.Hotel{
		ID:         l.ID,
		Name:       firstNonEmpty(l.Name, r.Detail.Name),
		Lat:        *lat,
		Lng:        *lng,
		Address:    firstNonEmpty(l.Address, r.Detail.Address),
		Rating:     r.Detail.Rating,
		PolicyText: r.PolicyText,
		Source:     s.Name(),
		DetailURL:  l.DetailURL,
		Photos:     r.Detail.Photos,
	}
	h.SetParsedAge(r.MinAge)
	if len(h.Photos) > 0 {
		h.ThumbnailURL = h.Photos[0]
	}
	return h, nil
}

// SearchKey is the cache key of a provider query. Coordinates are
// rounded to four decimals (about 11 m).
func SearchKey(source model.Source, params model.SearchParams) string {
	return fmt.Sprintf("%s:%.4f,%.4f:%g:%d", source, params.Lat, params.Lng, params.RadiusKm, params.Limit)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
