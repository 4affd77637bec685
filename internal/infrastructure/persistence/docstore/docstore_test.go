package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

type testDoc struct {
	Counter int      `json:"counter"`
	Items   []string `json:"items"`
}

func newTestStore(t *testing.T, opts LockOptions) *Store[testDoc] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	return New(path, opts, func() testDoc {
		return testDoc{Items: []string{}}
	})
}

func TestStore_BootstrapOnFirstLoad(t *testing.T) {
	s := newTestStore(t, DefaultLockOptions())

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Counter)

	// The default document is now on disk.
	_, err = os.Stat(s.Path())
	require.NoError(t, err)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, DefaultLockOptions())

	require.NoError(t, s.Save(testDoc{Counter: 3, Items: []string{"a", "b"}}))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Counter)
	assert.Equal(t, []string{"a", "b"}, doc.Items)

	// No temp file left behind.
	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_LoadCorruptDocument(t *testing.T) {
	s := newTestStore(t, DefaultLockOptions())
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Load()
	assert.ErrorIs(t, err, shared.ErrStorage)
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t, DefaultLockOptions())

	err := s.Update(context.Background(), func(doc testDoc) (testDoc, error) {
		doc.Counter++
		return doc, nil
	})
	require.NoError(t, err)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Counter)

	// The lock marker is gone after the update.
	_, err = os.Stat(s.Path() + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_UpdateErrorDoesNotSave(t *testing.T) {
	s := newTestStore(t, DefaultLockOptions())
	require.NoError(t, s.Save(testDoc{Counter: 5}))

	wantErr := assert.AnError
	err := s.Update(context.Background(), func(doc testDoc) (testDoc, error) {
		doc.Counter = 99
		return doc, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Counter)

	// Lock released even on failure.
	_, err = os.Stat(s.Path() + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_UpdateLockTimeout(t *testing.T) {
	opts := LockOptions{
		Timeout:    150 * time.Millisecond,
		Poll:       20 * time.Millisecond,
		StaleAfter: time.Hour, // never considered stale in this test
	}
	s := newTestStore(t, opts)

	// Simulate another process holding the lock.
	require.NoError(t, os.WriteFile(s.Path()+".lock", []byte(`{"token":"other"}`), 0o644))

	err := s.Update(context.Background(), func(doc testDoc) (testDoc, error) {
		return doc, nil
	})
	assert.ErrorIs(t, err, shared.ErrLockTimeout)

	os.Remove(s.Path() + ".lock")
}

func TestStore_StaleLockBroken(t *testing.T) {
	opts := LockOptions{
		Timeout:    2 * time.Second,
		Poll:       20 * time.Millisecond,
		StaleAfter: 50 * time.Millisecond,
	}
	s := newTestStore(t, opts)

	lockPath := s.Path() + ".lock"
	require.NoError(t, os.WriteFile(lockPath, []byte(`{"token":"crashed"}`), 0o644))
	// Age the marker past the stale ceiling.
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	err := s.Update(context.Background(), func(doc testDoc) (testDoc, error) {
		doc.Counter++
		return doc, nil
	})
	require.NoError(t, err)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Counter)
}

func TestStore_UpdateContextCancelled(t *testing.T) {
	opts := LockOptions{
		Timeout:    5 * time.Second,
		Poll:       20 * time.Millisecond,
		StaleAfter: time.Hour,
	}
	s := newTestStore(t, opts)
	require.NoError(t, os.WriteFile(s.Path()+".lock", []byte(`{"token":"other"}`), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Update(ctx, func(doc testDoc) (testDoc, error) {
		return doc, nil
	})
	assert.ErrorIs(t, err, shared.ErrLockTimeout)

	os.Remove(s.Path() + ".lock")
}
