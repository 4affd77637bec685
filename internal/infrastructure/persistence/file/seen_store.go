package file

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

// SeenStore is the append-only all-time log of user ids that ever touched
// the bot (all_users.txt). One decimal id per line; ids are never removed.
type SeenStore struct {
	path string
	mu   sync.Mutex
}

// NewSeenStore creates the store for all_users.txt.
func NewSeenStore(path string) *SeenStore {
	return &SeenStore{path: path}
}

// Add appends the id if it has not been seen before.
func (s *SeenStore) Add(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return shared.WrapError("seen", "Add", shared.ErrStorage, "opening "+s.path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(strconv.FormatInt(id, 10) + "\n"); err != nil {
		return shared.WrapError("seen", "Add", shared.ErrStorage, "appending to "+s.path, err)
	}
	return nil
}

// IDs returns every seen id in file order.
func (s *SeenStore) IDs() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Count returns the all-time user count.
func (s *SeenStore) Count() (int, error) {
	ids, err := s.IDs()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *SeenStore) read() ([]int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.WrapError("seen", "Read", shared.ErrStorage, "reading "+s.path, err)
	}

	var ids []int64
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			continue // malformed lines are skipped, not fatal
		}
		ids = append(ids, id)
	}
	return ids, nil
}
