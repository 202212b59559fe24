package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig documents the defaults; a failing case means a default
// changed.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default provider is mock", func(t *testing.T) {
		t.Parallel()
		if cfg.Provider != "mock" {
			t.Errorf("expected Provider to be 'mock', got '%s'", cfg.Provider)
		}
	})

	t.Run("default fetch timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default request interval is 400ms", func(t *testing.T) {
		t.Parallel()
		if cfg.MinInterval != 400*time.Millisecond {
			t.Errorf("expected MinInterval to be 400ms, got %v", cfg.MinInterval)
		}
	})

	t.Run("default concurrency is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 5 {
			t.Errorf("expected Concurrency to be 5, got %d", cfg.Concurrency)
		}
	})

	t.Run("scraping is enabled by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.ScrapingEnabled {
			t.Error("expected ScrapingEnabled to be true")
		}
	})

	t.Run("default failure policy is error", func(t *testing.T) {
		t.Parallel()
		if cfg.FailurePolicy != "error" {
			t.Errorf("expected FailurePolicy to be 'error', got '%s'", cfg.FailurePolicy)
		}
	})

	t.Run("default cache is memory only", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheBackend != "" {
			t.Errorf("expected empty CacheBackend, got '%s'", cfg.CacheBackend)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"unknown provider", func(c *Config) { c.Provider = "trivago" }, ErrUnknownProvider},
		{"booking is valid", func(c *Config) { c.Provider = "booking" }, nil},
		{"unknown failure policy", func(c *Config) { c.FailurePolicy = "retry" }, ErrUnknownFailurePolicy},
		{"mock failure policy is valid", func(c *Config) { c.FailurePolicy = "mock" }, nil},
		{"unknown render engine", func(c *Config) { c.RenderEngine = "selenium" }, ErrUnknownRenderEngine},
		{"rod engine is valid", func(c *Config) { c.RenderEngine = "rod" }, nil},
		{"no render engine is valid", func(c *Config) { c.RenderEngine = "none" }, nil},
		{"negative radius", func(c *Config) { c.RadiusKm = -1 }, ErrInvalidRadius},
		{"negative limit", func(c *Config) { c.Limit = -1 }, ErrInvalidLimit},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero render timeout", func(c *Config) { c.RenderTimeout = 0 }, ErrInvalidTimeout},
		{"negative retries", func(c *Config) { c.RenderRetries = -1 }, ErrInvalidRetries},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"negative interval", func(c *Config) { c.MinInterval = -time.Second }, ErrInvalidMinInterval},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"json and markdown", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
		{"json only", func(c *Config) { c.JSONReport = true }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()

	t.Run("city resolves coordinates", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.City = "Sacramento, CA"
		if err := cfg.ValidateQuery(false, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Lat != 38.575764 || cfg.Lng != -121.478851 {
			t.Errorf("expected Sacramento coordinates, got %v,%v", cfg.Lat, cfg.Lng)
		}
	})

	t.Run("unknown city", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.City = "Atlantis"
		if err := cfg.ValidateQuery(false, false); !errors.Is(err, ErrUnknownCity) {
			t.Errorf("expected ErrUnknownCity, got %v", err)
		}
	})

	t.Run("missing coordinates", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.ValidateQuery(true, false); !errors.Is(err, ErrNoLocation) {
			t.Errorf("expected ErrNoLocation, got %v", err)
		}
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Lat = 120
		if err := cfg.ValidateQuery(true, true); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("expected ErrInvalidCoordinates, got %v", err)
		}
	})

	t.Run("search params fill defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Lat, cfg.Lng = 1, 2
		p := cfg.SearchParams()
		if p.Lat != 1 || p.Lng != 2 || p.RadiusKm != 20 || p.Limit != 50 {
			t.Errorf("unexpected params %+v", p)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	t.Run("reads recognised variables", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{
			EnvProvider:        "Booking",
			EnvRedisURL:        "redis://localhost:6379/0",
			EnvScrapingEnabled: "false",
			EnvFailurePolicy:   "MOCK",
			EnvProxy:           "socks5://127.0.0.1:1080",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Provider != "booking" || cfg.FailurePolicy != "mock" {
			t.Errorf("provider/policy = %q/%q", cfg.Provider, cfg.FailurePolicy)
		}
		if cfg.CacheBackend != "redis://localhost:6379/0" {
			t.Errorf("CacheBackend = %q", cfg.CacheBackend)
		}
		if cfg.ScrapingEnabled {
			t.Error("expected scraping disabled")
		}
		if cfg.Proxy != "socks5://127.0.0.1:1080" {
			t.Errorf("Proxy = %q", cfg.Proxy)
		}
	})

	t.Run("explicit cache wins over REDIS_URL", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		_ = cfg.ApplyEnv(env(map[string]string{
			EnvRedisURL: "redis://localhost:6379/0",
			EnvCache:    "sqlite",
		}))
		if cfg.CacheBackend != "sqlite" {
			t.Errorf("CacheBackend = %q", cfg.CacheBackend)
		}
	})

	t.Run("invalid boolean", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{EnvScrapingEnabled: "maybe"}))
		if err == nil || !strings.Contains(err.Error(), EnvScrapingEnabled) {
			t.Errorf("expected error naming %s, got %v", EnvScrapingEnabled, err)
		}
	})

	t.Run("empty environment keeps defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.ApplyEnv(env(nil)); err != nil {
			t.Fatal(err)
		}
		if cfg.Provider != DefaultProvider || !cfg.ScrapingEnabled {
			t.Errorf("defaults changed: %+v", cfg)
		}
	})
}

func boolPtr(b bool) *bool { return &b }

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()
		cf := &File{
			Defaults: SiteConfig{Cookie: "a=1", Concurrency: 3},
			Sites:    map[string]SiteConfig{},
		}
		got := cf.GetSiteConfig("booking")
		if got.Cookie != "a=1" || got.Concurrency != 3 {
			t.Errorf("expected defaults, got %+v", got)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()
		cf := &File{
			Defaults: SiteConfig{
				Cookie:  "a=1",
				Headers: map[string]string{"Accept-Language": "en-US", "X-Default": "1"},
			},
			Sites: map[string]SiteConfig{
				"booking": {
					Enabled:         boolPtr(false),
					Cookie:          "b=2",
					Headers:         map[string]string{"Accept-Language": "de-DE"},
					SearchURL:       "http://localhost/s?lat={lat}",
					ListingSelector: "#list",
					PolicySelector:  "#policy",
					Concurrency:     2,
				},
			},
		}
		got := cf.GetSiteConfig("booking")
		if got.Cookie != "b=2" || got.SearchURL != "http://localhost/s?lat={lat}" {
			t.Errorf("unexpected merge %+v", got)
		}
		if got.Headers["Accept-Language"] != "de-DE" || got.Headers["X-Default"] != "1" {
			t.Errorf("headers not merged: %v", got.Headers)
		}
		if got.ListingSelector != "#list" || got.PolicySelector != "#policy" || got.Concurrency != 2 {
			t.Errorf("selectors/concurrency not applied: %+v", got)
		}
		if got.Enabled == nil || *got.Enabled {
			t.Error("expected Enabled=false")
		}
		if cf.Defaults.Headers["Accept-Language"] != "en-US" {
			t.Error("merge must not modify the defaults")
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()
		cf := &File{Defaults: SiteConfig{Cookie: "a=1"}}
		if got := cf.GetSiteConfig("expedia"); got.Cookie != "a=1" {
			t.Errorf("expected default cookie, got %q", got.Cookie)
		}
	})
}

func TestSiteEnabled(t *testing.T) {
	t.Parallel()

	var nilFile *File
	if !nilFile.SiteEnabled("booking", true) {
		t.Error("nil file should follow the global switch")
	}

	cf := &File{
		Defaults: SiteConfig{Enabled: boolPtr(false)},
		Sites:    map[string]SiteConfig{"expedia": {Enabled: boolPtr(true)}},
	}
	if cf.SiteEnabled("booking", true) {
		t.Error("default Enabled=false should win over global")
	}
	if !cf.SiteEnabled("expedia", false) {
		t.Error("site Enabled=true should win over global")
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.hotellens")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".hotellens")
		content := `defaults:
  concurrency: 4
  headers:
    Accept-Language: "en-US"
sites:
  booking:
    enabled: true
    cookie: "session=xyz"
    searchURL: "https://www.booking.com/searchresults.html?latitude={lat}&longitude={lng}"
    policySelector: "#hotelPoliciesInc"
  expedia:
    enabled: false
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.Concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", cfg.Defaults.Concurrency)
		}
		booking := cfg.GetSiteConfig("booking")
		if booking.Cookie != "session=xyz" || booking.PolicySelector != "#hotelPoliciesInc" {
			t.Errorf("unexpected booking config %+v", booking)
		}
		if booking.Headers["Accept-Language"] != "en-US" {
			t.Error("expected default header")
		}
		if cfg.SiteEnabled("expedia", true) {
			t.Error("expected expedia disabled")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".hotellens")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".hotellens")
		if err := os.WriteFile(configPath, []byte("defaults:\n  concurrency: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestDotEnv(t *testing.T) {
	t.Parallel()

	t.Run("read parses without touching the environment", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		content := "HOTELLENS_PROVIDER=expedia\n# comment\nREDIS_URL=\"redis://:pw@localhost:6379/0\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		env, err := ReadDotEnv(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env["HOTELLENS_PROVIDER"] != "expedia" || env["REDIS_URL"] != "redis://:pw@localhost:6379/0" {
			t.Errorf("unexpected env %v", env)
		}

		cfg := NewConfig()
		if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
			t.Fatal(err)
		}
		if cfg.Provider != "expedia" || cfg.CacheBackend != "redis://:pw@localhost:6379/0" {
			t.Errorf("env not applied: %q %q", cfg.Provider, cfg.CacheBackend)
		}
	})

	t.Run("missing files are skipped", func(t *testing.T) {
		t.Parallel()
		if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
			t.Errorf("expected nil for missing file, got %v", err)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGCacheDir(); dir == "" || filepath.Base(dir) != AppName {
		t.Errorf("XDGCacheDir() = %q", dir)
	}
	if dir := XDGConfigDir(); dir == "" || filepath.Base(dir) != AppName {
		t.Errorf("XDGConfigDir() = %q", dir)
	}
}
