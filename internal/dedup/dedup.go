// Package dedup collapses near-duplicate items originating from different
// phases and sources. Normalized URLs and titles exist only for comparison
// and are never shown to end users.
package dedup

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sinnsyakai/research-assistant/internal/metrics"
	"github.com/sinnsyakai/research-assistant/internal/result"
)

// trackingParams are stripped before URL comparison.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "ref", "from"}

var (
	titleSuffix   = regexp.MustCompile(`\s*[-–—|｜:：]\s*[^-–—|｜:：]+$`)
	titleBrackets = regexp.MustCompile(`【[^】]*】|\[[^\]]*\]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// titlePrefixRunes bounds the comparison key so minor trailing variation
// between syndicated copies still collides.
const titlePrefixRunes = 40

// titleMinRunes is the minimum normalized length for title-based matching;
// very short titles would produce false-positive collisions.
const titleMinRunes = 10

// NormalizeURL returns the comparison form of a URL: lower-cased host and
// path with the trailing slash stripped and tracking parameters removed.
// Parse failures fall back to the raw string.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Host)
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	if enc := q.Encode(); enc != "" {
		return host + path + "?" + enc
	}
	return host + path
}

// NormalizeTitle reduces a title to its comparison core: the trailing
// " - Site Name"-style suffix and bracketed banners are stripped, whitespace
// collapsed away, the rest lower-cased and truncated to a short prefix.
func NormalizeTitle(title string) string {
	t := titleSuffix.ReplaceAllString(title, "")
	t = titleBrackets.ReplaceAllString(t, "")
	t = whitespace.ReplaceAllString(t, "")
	t = strings.ToLower(t)

	runes := []rune(t)
	if len(runes) > titlePrefixRunes {
		runes = runes[:titlePrefixRunes]
	}
	return string(runes)
}

// Dedupe iterates the priority-ordered merged list once and keeps the first
// occurrence of each normalized URL and of each sufficiently long normalized
// title. Because iteration is in phase priority order, first-occurrence-kept
// satisfies the trusted-over-general tie-break.
func Dedupe(items []result.DatedItem) []result.DatedItem {
	seenURLs := make(map[string]struct{}, len(items))
	seenTitles := make(map[string]struct{}, len(items))

	kept := make([]result.DatedItem, 0, len(items))
	for _, it := range items {
		nu := NormalizeURL(it.URL)
		if _, dup := seenURLs[nu]; dup {
			metrics.DedupDroppedTotal.WithLabelValues("url").Inc()
			continue
		}
		seenURLs[nu] = struct{}{}

		nt := NormalizeTitle(it.Title)
		if len([]rune(nt)) > titleMinRunes {
			if _, dup := seenTitles[nt]; dup {
				metrics.DedupDroppedTotal.WithLabelValues("title").Inc()
				continue
			}
			seenTitles[nt] = struct{}{}
		}

		kept = append(kept, it)
	}
	return kept
}
