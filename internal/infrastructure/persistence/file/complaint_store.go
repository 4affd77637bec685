package file

import (
	"context"
	"time"

	"github.com/campus-hub/campus-content-bot/internal/domain/complaint"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// ComplaintStore persists complaints.json.
type ComplaintStore struct {
	store *docstore.Store[*complaint.Log]
}

// NewComplaintStore creates the store for complaints.json.
func NewComplaintStore(path string, opts docstore.LockOptions) *ComplaintStore {
	return &ComplaintStore{
		store: docstore.New(path, opts, complaint.NewLog),
	}
}

// Append records a new complaint under the lock and returns it with its
// assigned id.
func (s *ComplaintStore) Append(ctx context.Context, userID int64, userName, code, text string, at time.Time) (complaint.Complaint, error) {
	var added complaint.Complaint
	err := s.store.Update(ctx, func(l *complaint.Log) (*complaint.Log, error) {
		if l == nil {
			l = complaint.NewLog()
		}
		added = l.Append(userID, userName, code, text, at)
		return l, nil
	})
	return added, err
}

// Load returns the full log without locking.
func (s *ComplaintStore) Load() (*complaint.Log, error) {
	return s.store.Load()
}
