package file

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

// LoginStore persists login bindings in logged_users.txt: one "id|name"
// line per logged-in account. Bindings survive restarts; everything else
// about a session does not.
type LoginStore struct {
	path string
	mu   sync.Mutex
}

// NewLoginStore creates the store for logged_users.txt.
func NewLoginStore(path string) *LoginStore {
	return &LoginStore{path: path}
}

// Bind records that id is logged in under the given student name,
// replacing any previous binding for the id.
func (s *LoginStore) Bind(id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bindings, order, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := bindings[id]; !ok {
		order = append(order, id)
	}
	bindings[id] = name
	return s.write(bindings, order)
}

// Unbind removes the binding for id. Absent ids are a no-op.
func (s *LoginStore) Unbind(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bindings, order, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := bindings[id]; !ok {
		return nil
	}
	delete(bindings, id)
	next := order[:0]
	for _, existing := range order {
		if existing != id {
			next = append(next, existing)
		}
	}
	return s.write(bindings, next)
}

// Get returns the student name bound to id.
func (s *LoginStore) Get(id int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bindings, _, err := s.read()
	if err != nil {
		return "", false, err
	}
	name, ok := bindings[id]
	return name, ok, nil
}

// Repair rewrites the file deduplicated by id, keeping the last binding
// for each. Run once at startup; older deployments could accumulate
// duplicate lines for the same account.
func (s *LoginStore) Repair() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bindings, order, err := s.read()
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		return nil
	}
	return s.write(bindings, order)
}

// read parses the file into a binding map plus first-seen order. A later
// duplicate line overrides the name but keeps the original position.
func (s *LoginStore) read() (map[int64]string, []int64, error) {
	bindings := map[int64]string{}
	var order []int64

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return bindings, order, nil
	}
	if err != nil {
		return nil, nil, shared.WrapError("logins", "Read", shared.ErrStorage, "reading "+s.path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idPart, name, found := strings.Cut(line, "|")
		if !found {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil {
			continue
		}
		if _, seen := bindings[id]; !seen {
			order = append(order, id)
		}
		bindings[id] = strings.TrimSpace(name)
	}
	return bindings, order, nil
}

func (s *LoginStore) write(bindings map[int64]string, order []int64) error {
	var b strings.Builder
	for _, id := range order {
		name, ok := bindings[id]
		if !ok {
			continue
		}
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteString("|")
		b.WriteString(name)
		b.WriteString("\n")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return shared.WrapError("logins", "Write", shared.ErrStorage, "writing "+tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return shared.WrapError("logins", "Write", shared.ErrStorage, "replacing "+s.path, err)
	}
	return nil
}
