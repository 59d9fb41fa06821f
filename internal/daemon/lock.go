package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked means another process holds the run lock.
var ErrLocked = errors.New("another reviewsync run is in progress")

// RunLock is an advisory file lock shared by every reviewsync process using
// the same ledger.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock returns a lock on path. Nothing is acquired yet.
func NewRunLock(path string) *RunLock {
	return &RunLock{path: path, lock: flock.New(path)}
}

// TryAcquire takes the lock without blocking.
func (l *RunLock) TryAcquire() error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure lock directory: %w", err)
		}
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release drops the lock if it is held.
func (l *RunLock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}
