// Package result defines the records that flow between pipeline stages.
package result

// Phase tags a raw item with the fetch sub-query that produced it. The
// concatenation order trusted > general > video/academic is the priority
// order the deduplicator relies on.
type Phase string

const (
	PhaseTrusted  Phase = "trusted"
	PhaseGeneral  Phase = "general"
	PhaseVideo    Phase = "video"
	PhaseAcademic Phase = "academic"
)

// RawItem is a single search hit as returned by a collaborator. It is
// created by the source fetcher and read-only downstream.
type RawItem struct {
	Title       string
	URL         string
	Snippet     string
	DisplayHost string
	// Metadata carries publication-date and content-type hints keyed the way
	// the collaborator exposes them (article:published_time, uploadDate, ...).
	Metadata map[string]string
	Phase    Phase
}

// Provenance records which fallback produced a canonical publication date.
type Provenance string

const (
	DateFromMetadata        Provenance = "metadata"
	DateFromURL             Provenance = "url-pattern"
	DateFromSnippetAbsolute Provenance = "snippet-absolute"
	DateFromSnippetRelative Provenance = "snippet-relative"
	DateNone                Provenance = "none"
)

// DatedItem is an accepted item annotated with an optional canonical
// publication date (YYYY-MM-DD) and its provenance.
type DatedItem struct {
	RawItem
	PublicationDate string
	DateSource      Provenance
}

// Author is a display name in the canonical output schema.
type Author struct {
	Name string `json:"name"`
}

// Canonical is the only shape crossing the pipeline output boundary.
type Canonical struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract,omitempty"`
	URL             string   `json:"url"`
	Year            int      `json:"year,omitempty"`
	PublicationDate string   `json:"publicationDate,omitempty"`
	Authors         []Author `json:"authors"`
	Venue           string   `json:"venue"`
	Country         string   `json:"country,omitempty"`
}
