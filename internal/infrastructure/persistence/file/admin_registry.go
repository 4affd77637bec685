package file

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// AdminRegistry is the authoritative in-memory cache of the admin set and
// their capabilities. Loaded once at startup, written back after every
// mutation. The owner is an implicit super-admin: never persisted, never
// deletable, every capability check passes.
type AdminRegistry struct {
	ownerID int64

	idsStore  *docstore.Store[[]int64]
	permStore *docstore.Store[map[string]identity.CapabilitySet]

	mu   sync.RWMutex
	ids  map[int64]bool
	caps map[int64]identity.CapabilitySet
}

// NewAdminRegistry creates the registry over admins.json and
// admin_perms.json.
func NewAdminRegistry(idsPath, permsPath string, opts docstore.LockOptions, ownerID int64) *AdminRegistry {
	return &AdminRegistry{
		ownerID: ownerID,
		idsStore: docstore.New(idsPath, opts, func() []int64 {
			return []int64{}
		}),
		permStore: docstore.New(permsPath, opts, func() map[string]identity.CapabilitySet {
			return map[string]identity.CapabilitySet{}
		}),
		ids:  map[int64]bool{},
		caps: map[int64]identity.CapabilitySet{},
	}
}

// Load populates the cache from disk. Called once at startup. Capability
// entries without an admin id are tolerated (orphans from an interrupted
// delete) and ignored; unknown capability names are dropped.
func (r *AdminRegistry) Load() error {
	ids, err := r.idsStore.Load()
	if err != nil {
		return err
	}
	perms, err := r.permStore.Load()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids = map[int64]bool{}
	for _, id := range ids {
		if id == r.ownerID {
			continue
		}
		r.ids[id] = true
	}

	r.caps = map[int64]identity.CapabilitySet{}
	for key, set := range perms {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || !r.ids[id] {
			continue
		}
		clean := identity.CapabilitySet{}
		for c, on := range set {
			if c.Valid() && on {
				clean[c] = true
			}
		}
		r.caps[id] = clean
	}
	return nil
}

// IsAdmin reports whether id may open the admin console.
func (r *AdminRegistry) IsAdmin(id int64) bool {
	if id == r.ownerID {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ids[id]
}

// IsOwner reports whether id is the owner account.
func (r *AdminRegistry) IsOwner(id int64) bool {
	return id == r.ownerID
}

// HasCapability reports whether id holds the capability right now. The
// owner holds everything.
func (r *AdminRegistry) HasCapability(id int64, c identity.Capability) bool {
	if id == r.ownerID {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ids[id] && r.caps[id].Has(c)
}

// Capabilities returns a copy of the grants held by id.
func (r *AdminRegistry) Capabilities(id int64) identity.CapabilitySet {
	if id == r.ownerID {
		return identity.FullCapabilitySet()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := identity.CapabilitySet{}
	for c, on := range r.caps[id] {
		out[c] = on
	}
	return out
}

// List returns the persisted admin ids in ascending order. The owner is
// not included.
func (r *AdminRegistry) List() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Add registers a new admin. New admins start with no grants; the owner
// toggles capabilities on afterwards.
func (r *AdminRegistry) Add(ctx context.Context, id int64) error {
	if id == r.ownerID {
		return shared.ErrOwnerImmutable
	}

	r.mu.Lock()
	if r.ids[id] {
		r.mu.Unlock()
		return shared.ErrAdminExists
	}
	r.ids[id] = true
	r.caps[id] = identity.CapabilitySet{}
	r.mu.Unlock()

	if err := r.saveIDs(ctx); err != nil {
		return err
	}
	return r.savePerms(ctx)
}

// Delete removes an admin. The id-set save and the capability-map save
// are sequential and non-transactional; a crash in between leaves an
// orphaned capability entry which Load and Add both tolerate.
func (r *AdminRegistry) Delete(ctx context.Context, id int64) error {
	if id == r.ownerID {
		return shared.ErrOwnerImmutable
	}

	r.mu.Lock()
	if !r.ids[id] {
		r.mu.Unlock()
		return shared.ErrAdminNotFound
	}
	delete(r.ids, id)
	delete(r.caps, id)
	r.mu.Unlock()

	if err := r.saveIDs(ctx); err != nil {
		return err
	}
	return r.savePerms(ctx)
}

// Toggle flips one capability for an admin and returns the new state.
// The owner's grants cannot be edited.
func (r *AdminRegistry) Toggle(ctx context.Context, id int64, c identity.Capability) (bool, error) {
	if id == r.ownerID {
		return false, shared.ErrOwnerImmutable
	}

	r.mu.Lock()
	if !r.ids[id] {
		r.mu.Unlock()
		return false, shared.ErrAdminNotFound
	}
	set := r.caps[id]
	if set == nil {
		set = identity.CapabilitySet{}
		r.caps[id] = set
	}
	on := set.Toggle(c)
	r.mu.Unlock()

	if err := r.savePerms(ctx); err != nil {
		return on, err
	}
	return on, nil
}

func (r *AdminRegistry) saveIDs(ctx context.Context) error {
	r.mu.RLock()
	snapshot := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		snapshot = append(snapshot, id)
	}
	r.mu.RUnlock()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i] < snapshot[j] })

	return r.idsStore.Update(ctx, func(_ []int64) ([]int64, error) {
		return snapshot, nil
	})
}

func (r *AdminRegistry) savePerms(ctx context.Context) error {
	r.mu.RLock()
	snapshot := make(map[string]identity.CapabilitySet, len(r.caps))
	for id, set := range r.caps {
		copied := identity.CapabilitySet{}
		for c, on := range set {
			copied[c] = on
		}
		snapshot[strconv.FormatInt(id, 10)] = copied
	}
	r.mu.RUnlock()

	return r.permStore.Update(ctx, func(_ map[string]identity.CapabilitySet) (map[string]identity.CapabilitySet, error) {
		return snapshot, nil
	})
}
