package file

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

const testOwnerID = int64(1000)

func newTestRegistry(t *testing.T) *AdminRegistry {
	t.Helper()
	dir := t.TempDir()
	r := NewAdminRegistry(
		filepath.Join(dir, "admins.json"),
		filepath.Join(dir, "admin_perms.json"),
		docstore.DefaultLockOptions(),
		testOwnerID,
	)
	require.NoError(t, r.Load())
	return r
}

func TestAdminRegistry_OwnerIsImplicitSuperAdmin(t *testing.T) {
	r := newTestRegistry(t)

	assert.True(t, r.IsAdmin(testOwnerID))
	assert.True(t, r.IsOwner(testOwnerID))
	for _, c := range identity.AllCapabilities {
		assert.True(t, r.HasCapability(testOwnerID, c), string(c))
	}

	// Owner never appears in the persisted list.
	assert.Empty(t, r.List())

	// And cannot be added, deleted or edited.
	ctx := context.Background()
	assert.ErrorIs(t, r.Add(ctx, testOwnerID), shared.ErrForbidden)
	assert.ErrorIs(t, r.Delete(ctx, testOwnerID), shared.ErrForbidden)
	_, err := r.Toggle(ctx, testOwnerID, identity.CapContent)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestAdminRegistry_AddStartsWithNoGrants(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, 42))
	assert.True(t, r.IsAdmin(42))
	for _, c := range identity.AllCapabilities {
		assert.False(t, r.HasCapability(42, c), string(c))
	}

	assert.ErrorIs(t, r.Add(ctx, 42), shared.ErrAlreadyExists)
	assert.Equal(t, []int64{42}, r.List())
}

func TestAdminRegistry_Toggle(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, 42))

	on, err := r.Toggle(ctx, 42, identity.CapBroadcast)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, r.HasCapability(42, identity.CapBroadcast))
	assert.False(t, r.HasCapability(42, identity.CapContent))

	on, err = r.Toggle(ctx, 42, identity.CapBroadcast)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = r.Toggle(ctx, 99, identity.CapContent)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAdminRegistry_Delete(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, 42))

	require.NoError(t, r.Delete(ctx, 42))
	assert.False(t, r.IsAdmin(42))
	assert.False(t, r.HasCapability(42, identity.CapContent))
	assert.ErrorIs(t, r.Delete(ctx, 42), shared.ErrNotFound)
}

func TestAdminRegistry_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	idsPath := filepath.Join(dir, "admins.json")
	permsPath := filepath.Join(dir, "admin_perms.json")
	ctx := context.Background()

	r1 := NewAdminRegistry(idsPath, permsPath, docstore.DefaultLockOptions(), testOwnerID)
	require.NoError(t, r1.Load())
	require.NoError(t, r1.Add(ctx, 42))
	_, err := r1.Toggle(ctx, 42, identity.CapStats)
	require.NoError(t, err)

	r2 := NewAdminRegistry(idsPath, permsPath, docstore.DefaultLockOptions(), testOwnerID)
	require.NoError(t, r2.Load())
	assert.True(t, r2.IsAdmin(42))
	assert.True(t, r2.HasCapability(42, identity.CapStats))
	assert.False(t, r2.HasCapability(42, identity.CapContent))
}

func TestAdminRegistry_LoadIgnoresOrphanedPerms(t *testing.T) {
	dir := t.TempDir()
	idsPath := filepath.Join(dir, "admins.json")
	permsPath := filepath.Join(dir, "admin_perms.json")
	ctx := context.Background()

	r1 := NewAdminRegistry(idsPath, permsPath, docstore.DefaultLockOptions(), testOwnerID)
	require.NoError(t, r1.Load())
	require.NoError(t, r1.Add(ctx, 42))
	require.NoError(t, r1.Add(ctx, 43))
	require.NoError(t, r1.Delete(ctx, 42))

	// A fresh load sees only the remaining admin; capability entries
	// without a matching id would be dropped silently.
	r2 := NewAdminRegistry(idsPath, permsPath, docstore.DefaultLockOptions(), testOwnerID)
	require.NoError(t, r2.Load())
	assert.Equal(t, []int64{43}, r2.List())
	assert.False(t, r2.HasCapability(42, identity.CapContent))
}
