// Package assemble applies the remaining global filters and maps surviving
// items to the canonical output schema. This is the only place Canonical
// results are produced.
package assemble

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/sinnsyakai/research-assistant/internal/intent"
	"github.com/sinnsyakai/research-assistant/internal/result"
	"github.com/sinnsyakai/research-assistant/internal/rules"
)

// DefaultCap is the page cap for the interactive search pipeline.
const DefaultCap = 20

// Assembler finalizes a deduplicated item list.
type Assembler struct {
	// Cap bounds the output length; zero means DefaultCap.
	Cap int
}

// Assemble filters, truncates, and maps items to Canonical results.
func (a *Assembler) Assemble(items []result.DatedItem, sig intent.Signals) []result.Canonical {
	limit := a.Cap
	if limit <= 0 {
		limit = DefaultCap
	}

	out := make([]result.Canonical, 0, limit)
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		// Canonical results must carry a title and URL.
		if it.Title == "" || it.URL == "" {
			continue
		}
		if !sig.GovernmentInfo && isGovDomain(it.URL) {
			continue
		}
		out = append(out, toCanonical(it, sig))
	}
	return out
}

// isGovDomain reports whether the URL sits on a government
// top-level/administrative domain.
func isGovDomain(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range rules.GovDomainMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func toCanonical(it result.DatedItem, sig intent.Signals) result.Canonical {
	c := result.Canonical{
		ID:              uuid.NewString(),
		Title:           it.Title,
		Abstract:        StripHTML(it.Snippet),
		URL:             it.URL,
		PublicationDate: it.PublicationDate,
		Venue:           it.DisplayHost,
		Country:         "JP",
	}

	if len(it.PublicationDate) >= 4 {
		c.Year = yearOf(it.PublicationDate)
	}
	if it.Phase == result.PhaseVideo {
		c.Venue = "YouTube"
	}
	if sig.GlobalTarget {
		c.Country = "US"
	}

	author := it.DisplayHost
	if author == "" {
		author = "Unknown"
	}
	c.Authors = []result.Author{{Name: author}}
	if c.Venue == "" {
		c.Venue = "Unknown"
	}

	return c
}

func yearOf(date string) int {
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}

// StripHTML reduces a collaborator snippet to plain text: search responses
// carry inline markup that must not leak into the output schema.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
