// Package postgres stores history in PostgreSQL for deployments where runs
// do not share a filesystem.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sinnsyakai/research-assistant/internal/history"
)

// ensure postgresBackend implements history.Store
var _ history.Store = (*postgresBackend)(nil)

type postgresBackend struct {
	pool     *pgxpool.Pool
	capacity int
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id BIGSERIAL PRIMARY KEY,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	sent_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_url ON history(url);
`

// New creates a Postgres-backed history.Store.
func New(ctx context.Context, dsn string, capacity int) (history.Store, error) {
	if capacity <= 0 {
		capacity = history.DefaultCap
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &postgresBackend{pool: pool, capacity: capacity}, nil
}

func (b *postgresBackend) Seen(ctx context.Context, url, title string) (bool, error) {
	var seen bool
	err := b.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM history WHERE url = $1 OR ($2 <> '' AND title = $2))`,
		url, title,
	).Scan(&seen)
	if err != nil {
		return false, fmt.Errorf("query history: %w", err)
	}
	return seen, nil
}

func (b *postgresBackend) Add(ctx context.Context, records []history.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if _, err := tx.Exec(ctx,
			`INSERT INTO history (url, title, sent_at) VALUES ($1, $2, $3)`,
			r.URL, r.Title, r.SentAt,
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY sent_at DESC, id DESC LIMIT $1
		)`,
		b.capacity,
	); err != nil {
		return fmt.Errorf("evict history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
