package file

import (
	"context"
	"strconv"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// IdentityStore persists users.json: everything known about accounts that
// have touched the bot, upserted from every inbound event.
type IdentityStore struct {
	store *docstore.Store[map[string]identity.Identity]
}

// NewIdentityStore creates the store for users.json.
func NewIdentityStore(path string, opts docstore.LockOptions) *IdentityStore {
	return &IdentityStore{
		store: docstore.New(path, opts, func() map[string]identity.Identity {
			return map[string]identity.Identity{}
		}),
	}
}

// Upsert merges the identity observed on an inbound event. Empty fields
// keep their previous value so a login code is not wiped by a later plain
// message.
func (s *IdentityStore) Upsert(ctx context.Context, id identity.Identity) error {
	return s.store.Update(ctx, func(m map[string]identity.Identity) (map[string]identity.Identity, error) {
		if m == nil {
			m = map[string]identity.Identity{}
		}
		key := strconv.FormatInt(id.ID, 10)
		prev := m[key]
		next := identity.Identity{ID: id.ID, Name: id.Name, Username: id.Username, LastCode: id.LastCode}
		if next.Name == "" {
			next.Name = prev.Name
		}
		if next.Username == "" {
			next.Username = prev.Username
		}
		if next.LastCode == "" {
			next.LastCode = prev.LastCode
		}
		m[key] = next
		return m, nil
	})
}

// Get returns the stored identity for an id.
func (s *IdentityStore) Get(id int64) (identity.Identity, bool, error) {
	m, err := s.store.Load()
	if err != nil {
		return identity.Identity{}, false, err
	}
	ident, ok := m[strconv.FormatInt(id, 10)]
	return ident, ok, nil
}

// FindByUsername looks an identity up by Telegram username, with or
// without the leading @, case-insensitively.
func (s *IdentityStore) FindByUsername(username string) (identity.Identity, bool, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return identity.Identity{}, false, nil
	}
	m, err := s.store.Load()
	if err != nil {
		return identity.Identity{}, false, err
	}
	for _, ident := range m {
		if strings.EqualFold(ident.Username, username) {
			return ident, true, nil
		}
	}
	return identity.Identity{}, false, nil
}
