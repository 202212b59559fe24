package challenge

import (
	"regexp"
	"strings"
)

// markers are lower-case substrings that only appear on interstitial pages.
var markers = []string{
	"captcha",
	"verify you are human",
	"verify you're human",
	"verify you are not a robot",
	"verify you're not a robot",
	"are you a robot",
	"are you a human",
	"unusual traffic",
	"cf-chl",
	"__cf_chl",
	"challenge-platform",
	"cf-browser-verification",
	"px-captcha",
	"perimeterx",
	"datadome",
	"awswaf",
	"aws-waf-token",
	"incapsula",
	"_incapsula_resource",
	"checking your browser",
	"request unsuccessful",
}

// Detect reports whether html looks like a bot-protection page.
// Matching is case-insensitive. Empty input is not a challenge.
func Detect(html string) bool {
	if html == "" {
		return false
	}
	lower := strings.ToLower(html)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Marker returns the first marker found in html, or "" when none matches.
func Marker(html string) string {
	lower := strings.ToLower(html)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return m
		}
	}
	return ""
}

// scriptLike matches code shapes only, so prose that says "document."
// or "window." at the end of a sentence is not mistaken for script.
var scriptLike = regexp.MustCompile(`(?i)(function\s*\(|=>|\b(?:var|let|const)\s+\w+\s*=|\bwindow\.\w+\s*[(.=\[]|\bdocument\.\w+\s*[(.=\[]|[{};]{3,})`)

// LooksLikeScript reports whether text is more likely JavaScript source
// than human-readable prose. Policy snippets that look like script are
// treated as unusable.
func LooksLikeScript(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if scriptLike.MatchString(t) {
		return true
	}
	punct := strings.Count(t, "{") + strings.Count(t, "}") + strings.Count(t, ";")
	return len(t) > 0 && float64(punct)/float64(len(t)) > 0.05
}
