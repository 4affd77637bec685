package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

// LockOptions controls advisory lock acquisition.
type LockOptions struct {
	// Timeout is the acquisition ceiling before giving up.
	Timeout time.Duration

	// Poll is the interval between acquisition attempts.
	Poll time.Duration

	// StaleAfter is the marker age past which a lock is considered
	// abandoned by a crashed process and force-broken. Must stay far
	// above the longest possible save.
	StaleAfter time.Duration
}

// DefaultLockOptions mirror the original deployment values.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Timeout:    10 * time.Second,
		Poll:       50 * time.Millisecond,
		StaleAfter: 30 * time.Second,
	}
}

// marker is the JSON body written into a lock file. The token lets a
// holder verify on release that the marker is still its own.
type marker struct {
	Token     string    `json:"token"`
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
}

// fileLock is an exclusive-create marker lock guarding one document. It
// works across processes sharing a filesystem: creation with O_EXCL is the
// atomic acquire.
type fileLock struct {
	path string
	opts LockOptions

	token string
}

func newFileLock(docPath string, opts LockOptions) *fileLock {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultLockOptions().Timeout
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultLockOptions().Poll
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultLockOptions().StaleAfter
	}
	return &fileLock{path: docPath + ".lock", opts: opts}
}

// Acquire blocks until the marker is created, the timeout passes, or the
// context is done. A marker older than StaleAfter is removed and the
// acquire retried.
func (l *fileLock) Acquire(ctx context.Context) error {
	deadline := time.Now().Add(l.opts.Timeout)

	for {
		ok, err := l.tryAcquire()
		if err != nil {
			return shared.WrapError("docstore", "Lock", shared.ErrStorage, "creating lock marker", err)
		}
		if ok {
			return nil
		}

		l.breakIfStale()

		if time.Now().After(deadline) {
			return shared.WrapError("docstore", "Lock", shared.ErrLockTimeout,
				fmt.Sprintf("could not acquire %s within %s", l.path, l.opts.Timeout), nil)
		}

		select {
		case <-ctx.Done():
			return shared.WrapError("docstore", "Lock", shared.ErrLockTimeout, "context cancelled while waiting", ctx.Err())
		case <-time.After(l.opts.Poll):
		}
	}
}

func (l *fileLock) tryAcquire() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	l.token = uuid.NewString()
	body, _ := json.Marshal(marker{
		Token:     l.token,
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC(),
	})
	if _, err := f.Write(body); err != nil {
		os.Remove(l.path)
		return false, err
	}
	return true, nil
}

// breakIfStale removes a marker left behind by a crashed holder. The
// marker is re-read after the age check so a freshly re-created lock is
// not clobbered.
func (l *fileLock) breakIfStale() {
	info, err := os.Stat(l.path)
	if err != nil {
		return
	}
	if time.Since(info.ModTime()) < l.opts.StaleAfter {
		return
	}

	// Confirm the marker we observed is the one we delete: compare the
	// token still on disk with the one from the first read.
	first, err := readMarker(l.path)
	if err != nil {
		// Unreadable or corrupt marker past the stale age: remove it.
		os.Remove(l.path)
		return
	}
	second, err := readMarker(l.path)
	if err != nil || first.Token != second.Token {
		return
	}
	os.Remove(l.path)
}

func readMarker(path string) (marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return marker{}, err
	}
	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		return marker{}, err
	}
	return m, nil
}

// Release removes the marker if it still belongs to this holder.
func (l *fileLock) Release() {
	if l.token == "" {
		return
	}
	m, err := readMarker(l.path)
	if err == nil && m.Token != l.token {
		// Someone force-broke our stale marker and took the lock.
		return
	}
	os.Remove(l.path)
	l.token = ""
}
