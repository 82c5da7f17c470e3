// Package ai models the generative-AI collaborator as an injectable
// capability. Every use is best-effort enrichment: callers must continue
// with their pre-AI data on any error, and the Noop implementation lets the
// deterministic core run without network access.
package ai

import "context"

// Translatable is a title/abstract pair submitted for result translation.
type Translatable struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Candidate is one search hit offered to digest curation.
type Candidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Curated is one digest entry selected by the collaborator.
type Curated struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Summary    string `json:"summary"`
	Category   string `json:"category"`
	Importance int    `json:"importance"`
}

// Assistant is the optional generative-AI capability.
type Assistant interface {
	// ClarifyQuery rewrites an ambiguous query into a sharper one.
	ClarifyQuery(ctx context.Context, query string) (string, error)
	// TranslateQuery renders a domestic-language query into English search
	// keywords; academic selects terminology suited to a paper index.
	TranslateQuery(ctx context.Context, query string, academic bool) (string, error)
	// FilterRelevant returns the zero-based indices of titles relevant to
	// the query.
	FilterRelevant(ctx context.Context, query string, titles []string) ([]int, error)
	// TranslateResults translates titles and abstracts to the domestic
	// language, preserving order.
	TranslateResults(ctx context.Context, items []Translatable) ([]Translatable, error)
	// CurateDigest selects up to max of the highest-impact candidates for a
	// notification digest.
	CurateDigest(ctx context.Context, genre string, items []Candidate, max int) ([]Curated, error)
}

// Noop is the identity Assistant: queries pass through unchanged, every
// title is relevant, translations return their input, and curation keeps
// the first max candidates.
type Noop struct{}

var _ Assistant = Noop{}

func (Noop) ClarifyQuery(_ context.Context, query string) (string, error) {
	return query, nil
}

func (Noop) TranslateQuery(_ context.Context, query string, _ bool) (string, error) {
	return query, nil
}

func (Noop) FilterRelevant(_ context.Context, _ string, titles []string) ([]int, error) {
	idx := make([]int, len(titles))
	for i := range titles {
		idx[i] = i
	}
	return idx, nil
}

func (Noop) TranslateResults(_ context.Context, items []Translatable) ([]Translatable, error) {
	return items, nil
}

func (Noop) CurateDigest(_ context.Context, genre string, items []Candidate, max int) ([]Curated, error) {
	if max <= 0 || max > len(items) {
		max = len(items)
	}
	out := make([]Curated, 0, max)
	for _, c := range items[:max] {
		out = append(out, Curated{
			Title:    c.Title,
			URL:      c.URL,
			Summary:  c.Snippet,
			Category: genre,
		})
	}
	return out, nil
}
