package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nao1215/hotellens/internal/cache"
	"github.com/nao1215/hotellens/internal/geo"
	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/provider"
)

var (
	// ErrInvalidQuery is returned for missing or out-of-range coordinates,
	// or a negative radius or limit.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrUnknownProvider is returned when a query names a provider that
	// is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
)

// FailurePolicy decides what a search returns when its provider fails.
type FailurePolicy string

const (
	// FailError surfaces the provider error.
	FailError FailurePolicy = "error"

	// FailEmpty returns three empty buckets with unknown metadata.
	FailEmpty FailurePolicy = "empty"

	// FailMock answers from the built-in dataset and records the failed
	// provider in the metadata.
	FailMock FailurePolicy = "mock"
)

// ParseFailurePolicy converts a policy name into a FailurePolicy.
func ParseFailurePolicy(name string) (FailurePolicy, bool) {
	switch p := FailurePolicy(name); p {
	case FailError, FailEmpty, FailMock:
		return p, true
	default:
		return "", false
	}
}

// Service answers search queries.
type Service struct {
	providers map[model.Source]provider.Provider
	active    model.Source
	policy    FailurePolicy
	cache     *cache.Cache
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProvider registers p under its name.
func WithProvider(p provider.Provider) Option {
	return func(s *Service) {
		s.providers[p.Name()] = p
	}
}

// WithActive selects the provider used when a query does not name one.
func WithActive(name model.Source) Option {
	return func(s *Service) {
		s.active = name
	}
}

// WithFailurePolicy sets the failure policy. The default is FailError.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithCache sets the response cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock overrides the time source for response metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service. The mock provider is always registered and is
// active unless WithActive selects another.
func New(opts ...Option) *Service {
	s := &Service{
		providers: map[model.Source]provider.Provider{
			model.SourceMock: provider.NewMock(),
		},
		active: model.SourceMock,
		policy: FailError,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithLogger(s.logger))
	}
	return s
}

// Active returns the default provider name.
func (s *Service) Active() model.Source {
	return s.active
}

// Validate checks a query and fills in default radius and limit.
func Validate(params model.SearchParams) (model.SearchParams, error) {
	if !geo.ValidCoordinates(params.Lat, params.Lng) {
		return params, fmt.Errorf("%w: lat,lng required", ErrInvalidQuery)
	}
	if params.RadiusKm < 0 || math.IsNaN(params.RadiusKm) || math.IsInf(params.RadiusKm, 0) {
		return params, fmt.Errorf("%w: radius must be a positive number", ErrInvalidQuery)
	}
	if params.Limit < 0 {
		return params, fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	return params.WithDefaults(), nil
}

// Search runs params against the active provider.
func (s *Service) Search(ctx context.Context, params model.SearchParams) (*model.SearchResponse, error) {
	return s.SearchWith(ctx, s.active, params)
}

// SearchWith runs params against the named provider.
//
// Responses are cached for a few minutes per provider and query. When the
// provider fails the failure policy decides the answer; degraded answers
// are not cached.
func (s *Service) SearchWith(ctx context.Context, name model.Source, params model.SearchParams) (*model.SearchResponse, error) {
	params, err := Validate(params)
	if err != nil {
		return nil, err
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	key := provider.SearchKey(name, params)
	if resp, ok := cache.GetJSON[model.SearchResponse](ctx, s.cache, cache.NamespaceAPI, key); ok {
		resp.Meta.Cached = true
		return &resp, nil
	}

	s.logger.Info("search started", "provider", name, "lat", params.Lat, "lng", params.Lng, "radius_km", params.RadiusKm)
	hotels, err := p.Search(ctx, params)
	if err != nil {
		return s.degrade(ctx, name, params, err)
	}

	resp := model.Classify(hotels, string(name), s.now())
	s.logger.Info("search finished",
		"provider", name,
		"eligible", len(resp.Eligible),
		"unknown", len(resp.Unknown),
		"not_eligible", len(resp.NotEligible),
	)
	if err := cache.SetJSON(ctx, s.cache, cache.NamespaceAPI, key, resp, 0); err != nil {
		s.logger.Debug("response cache store failed", "error", err)
	}
	return resp, nil
}

func (s *Service) degrade(ctx context.Context, name model.Source, params model.SearchParams, cause error) (*model.SearchResponse, error) {
	switch s.policy {
	case FailEmpty:
		s.logger.Warn("provider failed, returning empty result", "provider", name, "error", cause)
		return model.EmptyResponse(), nil
	case FailMock:
		if name == model.SourceMock {
			return nil, cause
		}
		s.logger.Warn("provider failed, answering from static dataset", "provider", name, "error", cause)
		hotels, err := s.providers[model.SourceMock].Search(ctx, params)
		if err != nil {
			return nil, errors.Join(cause, err)
		}
		resp := model.Classify(hotels, string(model.SourceMock), s.now())
		resp.Meta.DegradedFrom = string(name)
		return resp, nil
	default:
		return nil, cause
	}
}
