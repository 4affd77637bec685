package file

import (
	"context"

	"github.com/campus-hub/campus-content-bot/internal/domain/enrollment"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// EnrollmentStore persists the student directory (codes.json).
type EnrollmentStore struct {
	store *docstore.Store[*enrollment.Directory]
}

// NewEnrollmentStore creates the store for codes.json.
func NewEnrollmentStore(path string, opts docstore.LockOptions) *EnrollmentStore {
	return &EnrollmentStore{
		store: docstore.New(path, opts, enrollment.NewDirectory),
	}
}

// Load returns the directory without locking.
func (s *EnrollmentStore) Load() (*enrollment.Directory, error) {
	return s.store.Load()
}

// Update mutates the directory under the advisory lock.
func (s *EnrollmentStore) Update(ctx context.Context, fn func(d *enrollment.Directory) error) error {
	return s.store.Update(ctx, func(d *enrollment.Directory) (*enrollment.Directory, error) {
		if d == nil {
			d = enrollment.NewDirectory()
		}
		if err := fn(d); err != nil {
			return nil, err
		}
		return d, nil
	})
}

// ReconcileImport merges import rows into the directory under the lock
// and replaces it with the reconciled result.
func (s *EnrollmentStore) ReconcileImport(ctx context.Context, rows []enrollment.ImportRow) (enrollment.ImportResult, error) {
	var res enrollment.ImportResult
	err := s.store.Update(ctx, func(d *enrollment.Directory) (*enrollment.Directory, error) {
		if d == nil {
			d = enrollment.NewDirectory()
		}
		next, r := enrollment.Reconcile(d, rows)
		res = r
		return next, nil
	})
	return res, err
}

// SuspensionStore persists suspended.json.
type SuspensionStore struct {
	store *docstore.Store[enrollment.SuspensionSet]
}

// NewSuspensionStore creates the store for suspended.json.
func NewSuspensionStore(path string, opts docstore.LockOptions) *SuspensionStore {
	return &SuspensionStore{
		store: docstore.New(path, opts, enrollment.NewSuspensionSet),
	}
}

// Load returns the suspension set without locking.
func (s *SuspensionStore) Load() (enrollment.SuspensionSet, error) {
	return s.store.Load()
}

// Update mutates the set under the advisory lock.
func (s *SuspensionStore) Update(ctx context.Context, fn func(set enrollment.SuspensionSet) error) error {
	return s.store.Update(ctx, func(set enrollment.SuspensionSet) (enrollment.SuspensionSet, error) {
		if set == nil {
			set = enrollment.NewSuspensionSet()
		}
		if err := fn(set); err != nil {
			return nil, err
		}
		return set, nil
	})
}
