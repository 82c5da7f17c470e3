// Package history persists the (normalized URL, title) pairs of previously
// delivered items so the notification bot never re-notifies a story. The
// store is bounded: once the cap is reached the oldest records are evicted.
package history

import (
	"context"
	"time"
)

// DefaultCap bounds the number of retained records.
const DefaultCap = 2000

// Record is one previously emitted item. URL is stored in its normalized
// comparison form.
type Record struct {
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	SentAt time.Time `json:"timestamp"`
}

// Store defines the interface for history persistence. Implementations are
// not safe for concurrent-process access; a run owns the store exclusively.
type Store interface {
	// Seen reports whether the normalized URL or the exact title has
	// already been emitted.
	Seen(ctx context.Context, url, title string) (bool, error)
	// Add records delivered items, newest first, evicting the oldest
	// entries beyond the cap.
	Add(ctx context.Context, records []Record) error
	Close() error
}
