package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer collects batches in memory and writes them as one JSON array when
// closed. The file is replaced atomically, so a failed run never leaves a
// partial array behind.
// It implements pipeline.BatchLoader.
type Writer[T any] struct {
	path  string
	mu    sync.Mutex
	items []T
}

// NewWriter creates a Writer targeting path.
func NewWriter[T any](path string) *Writer[T] {
	return &Writer[T]{path: path, items: []T{}}
}

// LoadBatch appends items to the pending array.
func (w *Writer[T]) LoadBatch(_ context.Context, items []T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, items...)
	return nil
}

// Close writes the collected items to the target path.
func (w *Writer[T]) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w.items); err != nil {
		tmp.Close()
		return fmt.Errorf("encode output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("write output %s: %w", w.path, err)
	}
	return nil
}
