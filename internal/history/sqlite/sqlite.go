// Package sqlite stores history in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sinnsyakai/research-assistant/internal/history"
)

// ensure sqliteBackend implements history.Store
var _ history.Store = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db       *sql.DB
	capacity int
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	sent_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_url ON history(url);
CREATE INDEX IF NOT EXISTS idx_history_sent_at ON history(sent_at);
`

// New creates a SQLite-backed history.Store.
func New(dsn string, capacity int) (history.Store, error) {
	if capacity <= 0 {
		capacity = history.DefaultCap
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteBackend{db: db, capacity: capacity}, nil
}

func (b *sqliteBackend) Seen(ctx context.Context, url, title string) (bool, error) {
	var count int
	err := b.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM history WHERE url = ? OR (? != '' AND title = ?)`,
		url, title, title,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query history: %w", err)
	}
	return count > 0, nil
}

func (b *sqliteBackend) Add(ctx context.Context, records []history.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO history (url, title, sent_at) VALUES (?, ?, ?)`,
			r.URL, r.Title, r.SentAt,
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	// Evict the oldest rows beyond the cap.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE rowid NOT IN (
			SELECT rowid FROM history ORDER BY sent_at DESC, rowid DESC LIMIT ?
		)`,
		b.capacity,
	); err != nil {
		return fmt.Errorf("evict history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
