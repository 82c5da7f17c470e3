// Package filebackend stores history as a single JSON document, read fully
// and rewritten fully on every change.
package filebackend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sinnsyakai/research-assistant/internal/history"
)

// ensure fileBackend implements history.Store
var _ history.Store = (*fileBackend)(nil)

type fileBackend struct {
	mu       sync.Mutex
	path     string
	capacity int
}

// New creates a file-backed history.Store. A missing file means an empty
// history. capacity <= 0 falls back to history.DefaultCap.
func New(path string, capacity int) (history.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history file path is required")
	}
	if capacity <= 0 {
		capacity = history.DefaultCap
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return &fileBackend{path: path, capacity: capacity}, nil
}

func (b *fileBackend) Seen(ctx context.Context, url, title string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.load()
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.URL == url {
			return true, nil
		}
		if title != "" && r.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (b *fileBackend) Add(ctx context.Context, records []history.Record) error {
	if len(records) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.load()
	if err != nil {
		return err
	}

	// Newest records go first so eviction always drops the oldest tail.
	merged := append(append([]history.Record{}, records...), existing...)
	if len(merged) > b.capacity {
		merged = merged[:b.capacity]
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func (b *fileBackend) Close() error {
	return nil
}

// load reads the whole document. A corrupt file degrades to an empty
// history rather than failing the run.
func (b *fileBackend) load() ([]history.Record, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []history.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil
	}
	return records, nil
}
