// Package pubdate derives a canonical YYYY-MM-DD publication date for an
// item through an ordered fallback chain: structured metadata, URL path,
// absolute snippet text, then relative snippet text. Malformed and future
// dates are treated as non-matches, never as errors.
package pubdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sinnsyakai/research-assistant/internal/result"
)

// metadataKeys is the priority-ordered list of structured hint keys; the
// first key present with a parseable date wins.
var metadataKeys = []string{
	"article:published_time",
	"article:modified_time",
	"date",
	"pubdate",
	"datepublished",
	"datePublished",
	"uploadDate",
	"og:updated_time",
	"og:article:published_time",
	"og:video:release_date",
	"dcterms.date",
	"sailthru.date",
	"newsarticle:datepublished",
	"article:datepublished",
	"videoobject:uploaddate",
}

var metadataLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"20060102",
	time.RFC1123,
	time.RFC1123Z,
}

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})/`),
	regexp.MustCompile(`/(\d{4})-(\d{2})-(\d{2})/`),
	regexp.MustCompile(`/(\d{4})(\d{2})(\d{2})/`),
	regexp.MustCompile(`[?&]date=(\d{4})-?(\d{2})-?(\d{2})`),
}

var (
	snippetKanji    = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	snippetSlash    = regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`)
	snippetHyphen   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	snippetEnglish  = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\.?\s+(\d{1,2}),?\s+(\d{4})`)
	snippetNoYear   = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)
	relativeDays    = regexp.MustCompile(`(\d+)\s*日前`)
	relativeHours   = regexp.MustCompile(`(\d+)\s*時間前`)
	relativeWeeks   = regexp.MustCompile(`(\d+)\s*週間?前`)
	relativeMonths  = regexp.MustCompile(`(\d+)\s*か?月前`)
	englishMonthNum = map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
)

// extractor attempts one fallback strategy.
type extractor struct {
	provenance result.Provenance
	extract    func(item result.RawItem, now time.Time) (string, bool)
}

var chain = []extractor{
	{result.DateFromMetadata, fromMetadata},
	{result.DateFromURL, fromURL},
	{result.DateFromSnippetAbsolute, fromSnippetAbsolute},
	{result.DateFromSnippetRelative, fromSnippetRelative},
}

// Extract runs the fallback chain, stopping at first success. The returned
// date is empty when no strategy succeeds.
func Extract(item result.RawItem, now time.Time) (string, result.Provenance) {
	for _, e := range chain {
		if date, ok := e.extract(item, now); ok {
			return date, e.provenance
		}
	}
	return "", result.DateNone
}

// Annotate classifies each accepted item with its canonical date.
func Annotate(items []result.RawItem, now time.Time) []result.DatedItem {
	dated := make([]result.DatedItem, 0, len(items))
	for _, it := range items {
		date, prov := Extract(it, now)
		dated = append(dated, result.DatedItem{
			RawItem:         it,
			PublicationDate: date,
			DateSource:      prov,
		})
	}
	return dated
}

func fromMetadata(item result.RawItem, now time.Time) (string, bool) {
	if len(item.Metadata) == 0 {
		return "", false
	}
	for _, key := range metadataKeys {
		raw, ok := item.Metadata[key]
		if !ok || raw == "" {
			continue
		}
		for _, layout := range metadataLayouts {
			t, err := time.Parse(layout, strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			if t.After(now) {
				break
			}
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func fromURL(item result.RawItem, now time.Time) (string, bool) {
	for _, re := range urlPatterns {
		m := re.FindStringSubmatch(item.URL)
		if m == nil {
			continue
		}
		if date, ok := buildDate(m[1], m[2], m[3], now); ok {
			return date, true
		}
	}
	return "", false
}

func fromSnippetAbsolute(item result.RawItem, now time.Time) (string, bool) {
	if item.Snippet == "" {
		return "", false
	}

	for _, re := range []*regexp.Regexp{snippetKanji, snippetSlash, snippetHyphen} {
		if m := re.FindStringSubmatch(item.Snippet); m != nil {
			if date, ok := buildDate(m[1], m[2], m[3], now); ok {
				return date, true
			}
		}
	}

	if m := snippetEnglish.FindStringSubmatch(item.Snippet); m != nil {
		month := englishMonthNum[strings.ToLower(m[1])]
		if date, ok := buildDate(m[3], strconv.Itoa(month), m[2], now); ok {
			return date, true
		}
	}

	// Month/day with no year resolves against the current run's year.
	if m := snippetNoYear.FindStringSubmatch(item.Snippet); m != nil {
		if date, ok := buildDate(strconv.Itoa(now.Year()), m[1], m[2], now); ok {
			return date, true
		}
	}

	return "", false
}

func fromSnippetRelative(item result.RawItem, now time.Time) (string, bool) {
	if item.Snippet == "" {
		return "", false
	}
	type rel struct {
		re    *regexp.Regexp
		shift func(n int) time.Time
	}
	for _, r := range []rel{
		{relativeDays, func(n int) time.Time { return now.AddDate(0, 0, -n) }},
		{relativeHours, func(n int) time.Time { return now.Add(-time.Duration(n) * time.Hour) }},
		{relativeWeeks, func(n int) time.Time { return now.AddDate(0, 0, -7*n) }},
		{relativeMonths, func(n int) time.Time { return now.AddDate(0, -n, 0) }},
	} {
		m := r.re.FindStringSubmatch(item.Snippet)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return r.shift(n).Format("2006-01-02"), true
	}
	return "", false
}

// buildDate validates year/month/day strings into a calendar date no later
// than now. Non-dates (month 13, Feb 30) fail the round trip and are
// rejected.
func buildDate(y, m, d string, now time.Time) (string, bool) {
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	if t.After(now) {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
