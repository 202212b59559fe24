package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/hotellens/internal/geo"
	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/render"
	"github.com/nao1215/hotellens/internal/search"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "hotellens"

	// DefaultProvider answers searches from the built-in dataset, so a
	// fresh install works offline.
	DefaultProvider = string(model.SourceMock)

	// DefaultFailurePolicy surfaces provider failures to the caller.
	DefaultFailurePolicy = string(search.FailError)

	// DefaultTimeout bounds each plain HTTP fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultRenderEngine drives Chrome through the DevTools protocol.
	DefaultRenderEngine = render.EngineChromedp

	// RenderEngineNone disables the headless fallback.
	RenderEngineNone = "none"

	// DefaultConcurrency is how many listings are enriched at once.
	DefaultConcurrency = 5

	// DefaultMinInterval is the minimum spacing of requests to one host.
	DefaultMinInterval = 400 * time.Millisecond

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = 8 << 20

	// DefaultListenAddr is the address of the HTTP API.
	DefaultListenAddr = ":8080"

	// LogFormatText and LogFormatJSON select the log handler.
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider        = "HOTELLENS_PROVIDER"
	EnvCache           = "HOTELLENS_CACHE"
	EnvRedisURL        = "REDIS_URL"
	EnvScrapingEnabled = "SCRAPING_ENABLED"
	EnvFailurePolicy   = "HOTELLENS_FAILURE_POLICY"
	EnvProxy           = "HOTELLENS_PROXY"
	EnvBrowserPath     = "HOTELLENS_BROWSER"
)

// Config holds all configuration options for HotelLens. It is populated
// from CLI flags and environment variables and passed down explicitly.
type Config struct {
	// Provider is the backend that answers searches: mock, booking or expedia.
	Provider string

	// Lat and Lng are the query point of a CLI search.
	Lat float64
	Lng float64

	// City is resolved through the built-in city table when set.
	// It takes precedence over Lat and Lng.
	City string

	// RadiusKm is the search radius. Zero means model.DefaultRadiusKm.
	RadiusKm float64

	// Limit caps the number of hotels. Zero means model.DefaultLimit.
	Limit int

	// FailurePolicy decides what a failed provider search returns:
	// error, empty or mock.
	FailurePolicy string

	// CacheBackend selects the durable cache tier. Empty or "memory"
	// keeps results in memory only; "sqlite" uses a file under the XDG
	// cache directory; redis:// and postgres:// URLs select those servers.
	CacheBackend string

	// ScrapingEnabled turns the scraping providers on. Per-site settings
	// in the config file may override it.
	ScrapingEnabled bool

	// Timeout bounds each plain HTTP fetch.
	Timeout time.Duration

	// RenderEngine is the headless browser driver: chromedp, rod or none.
	RenderEngine string

	// RenderTimeout bounds a single browser navigation.
	RenderTimeout time.Duration

	// RenderRetries is the number of render attempts per page.
	RenderRetries int

	// BrowserPath points at a Chromium-family executable. Empty searches PATH.
	BrowserPath string

	// Proxy routes fetches and renders through an HTTP or SOCKS5 proxy.
	Proxy string

	// Concurrency is how many listings are enriched at once.
	Concurrency int

	// MinInterval is the minimum spacing of requests to one host.
	MinInterval time.Duration

	// UserAgent is sent with plain HTTP fetches.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is text or json.
	LogFormat string

	// JSONReport and MarkdownReport select the report format. They are
	// mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile also writes the report to a file.
	ReportFile string

	// ShowEmpty prints empty buckets in text reports.
	ShowEmpty bool

	// ListenAddr is the address of the HTTP API.
	ListenAddr string

	// ConfigFilePath is the explicit path of the YAML config file. If
	// empty, .hotellens is looked up in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-provider settings loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Provider:        DefaultProvider,
		FailurePolicy:   DefaultFailurePolicy,
		ScrapingEnabled: true,
		Timeout:         DefaultTimeout,
		RenderEngine:    DefaultRenderEngine,
		RenderTimeout:   render.DefaultTimeout,
		RenderRetries:   render.DefaultRetries,
		Concurrency:     DefaultConcurrency,
		MinInterval:     DefaultMinInterval,
		MaxBodySize:     DefaultMaxBodySize,
		LogFormat:       LogFormatText,
		ListenAddr:      DefaultListenAddr,
	}
}

// XDGCacheDir returns the XDG cache directory for HotelLens.
// On Linux: ~/.cache/hotellens
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGConfigDir returns the XDG config directory for HotelLens.
// On Linux: ~/.config/hotellens
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyEnv fills settings from environment variables. getenv is usually
// os.Getenv. Flags applied afterwards take precedence.
//
// HOTELLENS_CACHE wins over REDIS_URL when both are set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvProvider)); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		c.CacheBackend = v
	}
	if v := strings.TrimSpace(getenv(EnvCache)); v != "" {
		c.CacheBackend = v
	}
	if v := strings.TrimSpace(getenv(EnvScrapingEnabled)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvScrapingEnabled, err)
		}
		c.ScrapingEnabled = enabled
	}
	if v := strings.TrimSpace(getenv(EnvFailurePolicy)); v != "" {
		c.FailurePolicy = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvProxy)); v != "" {
		c.Proxy = v
	}
	if v := strings.TrimSpace(getenv(EnvBrowserPath)); v != "" {
		c.BrowserPath = v
	}
	return nil
}

// Validate checks the settings shared by every command. It returns the
// first problem found.
func (c *Config) Validate() error {
	if _, ok := model.ParseSource(c.Provider); !ok {
		return ErrUnknownProvider
	}
	if _, ok := search.ParseFailurePolicy(c.FailurePolicy); !ok {
		return ErrUnknownFailurePolicy
	}
	switch c.RenderEngine {
	case render.EngineChromedp, render.EngineRod, RenderEngineNone:
	default:
		return ErrUnknownRenderEngine
	}
	if c.RadiusKm < 0 {
		return ErrInvalidRadius
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	if c.Timeout <= 0 || c.RenderTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RenderRetries < 0 {
		return ErrInvalidRetries
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MinInterval < 0 {
		return ErrInvalidMinInterval
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateQuery resolves City into coordinates when set and checks that
// the query point is usable. It is only needed by the search command.
func (c *Config) ValidateQuery(latSet, lngSet bool) error {
	if c.City != "" {
		p, ok := geo.LookupCity(c.City)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCity, c.City)
		}
		c.Lat, c.Lng = p.Lat, p.Lng
		return nil
	}
	if !latSet || !lngSet {
		return ErrNoLocation
	}
	if !geo.ValidCoordinates(c.Lat, c.Lng) {
		return ErrInvalidCoordinates
	}
	return nil
}

// SearchParams returns the query described by the configuration.
func (c *Config) SearchParams() model.SearchParams {
	return model.SearchParams{
		Lat:      c.Lat,
		Lng:      c.Lng,
		RadiusKm: c.RadiusKm,
		Limit:    c.Limit,
	}.WithDefaults()
}

// RenderEnabled reports whether a headless engine is configured.
func (c *Config) RenderEnabled() bool {
	return c.RenderEngine != RenderEngineNone
}
