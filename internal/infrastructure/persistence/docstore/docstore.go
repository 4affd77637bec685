// Package docstore is a concurrency-safe JSON document store. Each store
// guards one file: reads bootstrap a default document on first access,
// writes go through a temp file plus atomic rename, and read-modify-write
// cycles run under a cross-process advisory marker lock.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

// Store binds one document path to its Go representation.
type Store[T any] struct {
	path      string
	bootstrap func() T
	lock      *fileLock
}

// New creates a store for the document at path. bootstrap produces the
// default document written on first access.
func New[T any](path string, opts LockOptions, bootstrap func() T) *Store[T] {
	return &Store[T]{
		path:      path,
		bootstrap: bootstrap,
		lock:      newFileLock(path, opts),
	}
}

// Path returns the document path.
func (s *Store[T]) Path() string {
	return s.path
}

// Load reads the document without taking the lock. A missing file is
// bootstrapped with the default document; any parse failure after
// bootstrap is a storage error.
func (s *Store[T]) Load() (T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		def := s.bootstrap()
		if err := s.Save(def); err != nil {
			return def, err
		}
		return def, nil
	}
	if err != nil {
		var zero T
		return zero, shared.WrapError("docstore", "Load", shared.ErrStorage, "reading "+s.path, err)
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		var zero T
		return zero, shared.WrapError("docstore", "Load", shared.ErrStorage, "parsing "+s.path, err)
	}
	return doc, nil
}

// Save writes the document atomically: marshal to a sibling temp file,
// then rename over the target.
func (s *Store[T]) Save(doc T) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return shared.WrapError("docstore", "Save", shared.ErrStorage, "creating data dir", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return shared.WrapError("docstore", "Save", shared.ErrStorage, "marshaling "+s.path, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return shared.WrapError("docstore", "Save", shared.ErrStorage, "writing "+tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return shared.WrapError("docstore", "Save", shared.ErrStorage, "replacing "+s.path, err)
	}
	return nil
}

// Update runs fn over a freshly loaded document under the advisory lock
// and saves the result. The lock is always released. If fn returns an
// error the document is not saved.
func (s *Store[T]) Update(ctx context.Context, fn func(doc T) (T, error)) error {
	if err := s.lock.Acquire(ctx); err != nil {
		return err
	}
	defer s.lock.Release()

	doc, err := s.Load()
	if err != nil {
		return err
	}
	next, err := fn(doc)
	if err != nil {
		return err
	}
	return s.Save(next)
}
