package file

import (
	"context"
	"time"

	"github.com/campus-hub/campus-content-bot/internal/domain/stats"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// StatsStore persists stats.json.
type StatsStore struct {
	store *docstore.Store[*stats.Stats]
}

// NewStatsStore creates the store for stats.json.
func NewStatsStore(path string, opts docstore.LockOptions) *StatsStore {
	return &StatsStore{
		store: docstore.New(path, opts, stats.New),
	}
}

// RecordDownload bumps counters for one delivered file.
func (s *StatsStore) RecordDownload(ctx context.Context, subject, lecture, file string) error {
	return s.store.Update(ctx, func(st *stats.Stats) (*stats.Stats, error) {
		if st == nil {
			st = stats.New()
		}
		st.RecordDownload(subject, lecture, file)
		return st, nil
	})
}

// Touch records user activity.
func (s *StatsStore) Touch(ctx context.Context, userID int64, at time.Time) error {
	return s.store.Update(ctx, func(st *stats.Stats) (*stats.Stats, error) {
		if st == nil {
			st = stats.New()
		}
		st.Touch(userID, at)
		return st, nil
	})
}

// Load returns the current counters without locking.
func (s *StatsStore) Load() (*stats.Stats, error) {
	return s.store.Load()
}
