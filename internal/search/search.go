// Package search implements the collaborator clients for the web-search and
// academic-index services. Implementations must tolerate missing or partial
// metadata and degrade any transport failure to an error the caller can turn
// into an empty contribution.
package search

import "context"

// WebRequest is one request against the web-search collaborator.
type WebRequest struct {
	Query        string
	Count        int
	Start        int
	DateRestrict string // restriction code, empty for unrestricted
	Country      string
	Language     string
	LangRestrict string
}

// WebResult is a single hit from the web-search collaborator.
type WebResult struct {
	Title       string
	Link        string
	Snippet     string
	DisplayLink string
	// Metadata flattens the structured hint bag (metatags plus typed
	// pagemap entries) into a single key/value view.
	Metadata map[string]string
}

// WebSearcher abstracts the web-search collaborator. Implementations may use
// official APIs or other mechanisms.
type WebSearcher interface {
	Search(ctx context.Context, req WebRequest) ([]WebResult, error)
}

// AcademicRequest is one request against the academic-index collaborator.
type AcademicRequest struct {
	Query      string
	PerPage    int
	Page       int
	SortByDate bool
}

// AcademicWork is a single work from the academic index with the abstract
// already reconstructed to plain text.
type AcademicWork struct {
	ID              string
	Title           string
	Abstract        string
	URL             string
	Year            int
	PublicationDate string
	Authors         []string
	Venue           string
	Country         string
}

// AcademicSearcher abstracts the academic-index collaborator.
type AcademicSearcher interface {
	Search(ctx context.Context, req AcademicRequest) ([]AcademicWork, error)
}
