package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoginStore(t *testing.T) *LoginStore {
	t.Helper()
	return NewLoginStore(filepath.Join(t.TempDir(), "logged_users.txt"))
}

func TestLoginStore_BindGetUnbind(t *testing.T) {
	s := newTestLoginStore(t)

	_, ok, err := s.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Bind(1, "Ali"))
	name, ok, err := s.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ali", name)

	// Rebinding replaces the name.
	require.NoError(t, s.Bind(1, "Ali Hassan"))
	name, _, err = s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Ali Hassan", name)

	require.NoError(t, s.Unbind(1))
	_, ok, err = s.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)

	// Unbinding an absent id is a no-op.
	require.NoError(t, s.Unbind(1))
}

func TestLoginStore_RepairDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logged_users.txt")
	raw := "1|Ali\n2|Sara\n1|Ali Hassan\nnot a line\n\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s := NewLoginStore(path)
	require.NoError(t, s.Repair())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Last binding wins, first-seen order kept, junk dropped.
	assert.Equal(t, "1|Ali Hassan\n2|Sara\n", string(data))
}

func TestSeenStore_AppendOnlyDedup(t *testing.T) {
	s := NewSeenStore(filepath.Join(t.TempDir(), "all_users.txt"))

	require.NoError(t, s.Add(1))
	require.NoError(t, s.Add(2))
	require.NoError(t, s.Add(1))

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
