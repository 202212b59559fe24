package config

// SiteConfig holds settings for one scraping provider.
type SiteConfig struct {
	// Enabled overrides Config.ScrapingEnabled for this provider when set.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Cookie is sent with every request to the provider's host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for requests to the provider's host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// SearchURL replaces the built-in search URL template. The
	// placeholders {lat}, {lng} and {radius} are substituted.
	SearchURL string `yaml:"searchURL,omitempty"`

	// ListingSelector is the CSS selector a rendered search page is
	// waited on for.
	ListingSelector string `yaml:"listingSelector,omitempty"`

	// PolicySelector is the CSS selector a rendered detail page is
	// waited on for.
	PolicySelector string `yaml:"policySelector,omitempty"`

	// Concurrency overrides Config.Concurrency for this provider.
	// Zero keeps the global value.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// File represents the structure of the .hotellens configuration file.
type File struct {
	// Sites maps provider names (booking, expedia) to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every provider unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for provider, merging the
// provider's entry over the defaults.
func (cf *File) GetSiteConfig(provider string) SiteConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[provider]
	if !ok {
		return result
	}

	if site.Enabled != nil {
		result.Enabled = site.Enabled
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	if site.SearchURL != "" {
		result.SearchURL = site.SearchURL
	}
	if site.ListingSelector != "" {
		result.ListingSelector = site.ListingSelector
	}
	if site.PolicySelector != "" {
		result.PolicySelector = site.PolicySelector
	}
	if site.Concurrency != 0 {
		result.Concurrency = site.Concurrency
	}
	return result
}

// SiteEnabled reports whether scraping is enabled for provider, given
// the global switch.
func (cf *File) SiteEnabled(provider string, global bool) bool {
	if cf == nil {
		return global
	}
	if site := cf.GetSiteConfig(provider); site.Enabled != nil {
		return *site.Enabled
	}
	return global
}
