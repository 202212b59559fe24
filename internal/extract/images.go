package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaImageKeys are the social-card meta tags that name a page image.
var metaImageKeys = map[string]bool{
	"og:image":            true,
	"og:image:url":        true,
	"og:image:secure_url": true,
	"twitter:image":       true,
	"twitter:image:src":   true,
}

// imgSourceAttrs are checked in order on <img> elements. Lazy-loading
// libraries move the real URL out of src.
var imgSourceAttrs = []string{"src", "data-src", "data-lazy-src", "data-original", "srcset", "data-srcset"}

// ImageURLs returns photo URLs for the page, resolved against pageURL.
//
// Open Graph and Twitter card images are preferred, de-duplicated in
// document order. Without any, the first <img> with a usable source is
// returned on its own. A URL that cannot be resolved is kept as written.
func (p *Page) ImageURLs(pageURL string) []string {
	base, _ := url.Parse(pageURL)

	seen := make(map[string]bool)
	var out []string
	p.doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key := strings.ToLower(s.AttrOr("property", s.AttrOr("name", "")))
		if !metaImageKeys[key] {
			return
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		abs := resolve(base, content)
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	if len(out) > 0 {
		return out
	}

	p.doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := imgSource(s)
		if src == "" {
			return true
		}
		out = append(out, resolve(base, src))
		return false
	})
	return out
}

func imgSource(s *goquery.Selection) string {
	for _, attr := range imgSourceAttrs {
		v := strings.TrimSpace(s.AttrOr(attr, ""))
		if v == "" || strings.HasPrefix(v, "data:") {
			continue
		}
		if strings.HasSuffix(attr, "srcset") {
			v = firstSrcsetURL(v)
			if v == "" {
				continue
			}
		}
		return v
	}
	return ""
}

// firstSrcsetURL returns the URL of the first candidate in a srcset list
// such as "a.jpg 1x, b.jpg 2x".
func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// resolve makes ref absolute against base, returning ref unchanged when
// either side does not parse.
func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// ResolveURL makes ref absolute against pageURL. Unparsable input is
// returned unchanged.
func ResolveURL(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	return resolve(base, ref)
}
