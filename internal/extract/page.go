package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/hotellens/internal/challenge"
)

// Thresholds for policy snippet discovery.
const (
	minSnippetLen      = 10
	minBodyFallbackLen = 50
	bodyFallbackLen    = 200
	minRawScriptLen    = 500
)

// candidateTags are scanned in this order for policy-like text.
var candidateTags = []string{"section", "div", "p", "li", "span"}

const (
	candidateSelector = "section, div, p, li, span"
	invisibleBlocks   = "script, style, noscript, template"
)

var (
	whitespace     = regexp.MustCompile(`\s+`)
	policyKeywords = regexp.MustCompile(`(?i)polic|check[- ]?in|house rules`)
	scriptKeywords = regexp.MustCompile(`(?i)policy|house rules|fine print|check-?in`)
)

// Page is a parsed HTML document. Parse once and run every heuristic on
// the same Page.
type Page struct {
	doc *goquery.Document

	// visible is a copy of <body> with scripts and styles removed, so
	// text heuristics only see what a visitor would read.
	visible *goquery.Selection

	blocked bool
}

// Parse parses raw HTML. The HTML5 parser is lenient, so only reader
// failures produce an error.
func Parse(raw string) (*Page, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	visible := doc.Find("body").First().Clone()
	visible.Find(invisibleBlocks).Remove()

	return &Page{doc: doc, visible: visible, blocked: challenge.Detect(raw)}, nil
}

// Blocked reports whether the page is a bot-protection interstitial.
func (p *Page) Blocked() bool {
	return p.blocked
}

// Document exposes the underlying goquery document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// NormalizeSpace collapses whitespace runs to single spaces and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// BodyText returns the normalized visible text of the page body.
func (p *Page) BodyText() string {
	return NormalizeSpace(p.visible.Text())
}

// EmbeddedJSONAge scans inline <script> blocks for a minimum age.
//
// JSON-LD blocks and blocks that are bare JSON are re-serialized before
// matching, which flattens nested policy objects into one string. Long
// non-JSON scripts that mention policies are matched as raw text.
func (p *Page) EmbeddedJSONAge() (int, bool) {
	for _, blob := range p.scriptBlobs() {
		if age, ok := ParseMinAge(blob); ok {
			return age, true
		}
	}
	return 0, false
}

func (p *Page) scriptBlobs() []string {
	var blobs []string
	p.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		typ := strings.ToLower(s.AttrOr("type", ""))
		if strings.Contains(typ, "ld+json") {
			if flat, ok := reserialize(raw); ok {
				blobs = append(blobs, flat)
			}
			return
		}

		if flat, ok := reserialize(raw); ok {
			blobs = append(blobs, flat)
			return
		}

		if len(raw) > minRawScriptLen && scriptKeywords.MatchString(raw) {
			blobs = append(blobs, raw)
		}
	})
	return blobs
}

func reserialize(raw string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return "", false
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// PolicySnippet returns the most specific visible element whose text
// mentions a policy or check-in, scanning section, div, p, li and span
// elements in that order. An element is skipped when one of its
// descendants also qualifies. Without any candidate it falls back to the
// first 200 characters of the body text, and returns "" when the body is
// too short to be meaningful.
func (p *Page) PolicySnippet() string {
	for _, tag := range candidateTags {
		var snippet string
		p.visible.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !qualifies(s) {
				return true
			}
			if s.Find(candidateSelector).FilterFunction(func(_ int, d *goquery.Selection) bool {
				return qualifies(d)
			}).Length() > 0 {
				return true
			}
			snippet = NormalizeSpace(s.Text())
			return false
		})
		if snippet != "" {
			return snippet
		}
	}

	body := p.BodyText()
	if len(body) > minBodyFallbackLen {
		return truncateRunes(body, bodyFallbackLen)
	}
	return ""
}

func qualifies(s *goquery.Selection) bool {
	text := NormalizeSpace(s.Text())
	return len(text) > minSnippetLen && policyKeywords.MatchString(text)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
