package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateQuery. Callers can test for them with errors.Is.
var (
	// ErrUnknownProvider is returned when the provider is not one of
	// mock, booking or expedia.
	ErrUnknownProvider = errors.New("unknown provider: must be mock, booking or expedia")

	// ErrInvalidRadius is returned when the search radius is negative.
	ErrInvalidRadius = errors.New("invalid radius: must be non-negative")

	// ErrInvalidLimit is returned when the result limit is negative.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrInvalidTimeout is returned when a fetch or render timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the enrichment concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRetries is returned when the render retry count is negative.
	ErrInvalidRetries = errors.New("invalid render retries: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownFailurePolicy is returned when the failure policy is not
	// error, empty or mock.
	ErrUnknownFailurePolicy = errors.New("unknown failure policy: must be error, empty or mock")

	// ErrUnknownRenderEngine is returned when the render engine is not
	// chromedp, rod or none.
	ErrUnknownRenderEngine = errors.New("unknown render engine: must be chromedp, rod or none")

	// ErrInvalidMinInterval is returned when the per-host request interval is negative.
	ErrInvalidMinInterval = errors.New("invalid request interval: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoLocation is returned when a search has neither coordinates nor a city.
	ErrNoLocation = errors.New("no location: provide --lat and --lng or --city")

	// ErrUnknownCity is returned when --city is not in the built-in table.
	ErrUnknownCity = errors.New("unknown city")

	// ErrInvalidCoordinates is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180].
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)
