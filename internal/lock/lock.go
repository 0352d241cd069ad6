// Package lock provides a single-instance file lock over the cache and
// output directories, grounded on baaaaaaaka-codex-helper's
// internal/config.Store use of github.com/gofrs/flock: two concurrent
// pgpatcher runs must not race on the persistent caches (spec.md §6) or
// on output-tree deletion (C10 Output Manager).
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// InstanceLock guards one directory (the cache dir or the output dir)
// with a ".pgpatcher.lock" file created inside that directory.
type InstanceLock struct {
	path string
	fl   *flock.Flock
}

// New prepares a lock over dir without acquiring it.
func New(dir string) (*InstanceLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lock: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, ".pgpatcher.lock")
	return &InstanceLock{path: path, fl: flock.New(path)}, nil
}

// TryLock attempts a non-blocking exclusive lock, reporting whether it
// was acquired. A second pgpatcher instance sees false and should fail
// fast (spec.md §7 "Configuration error" class: fail before any work).
func (l *InstanceLock) TryLock() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("lock: acquire %s: %w", l.path, err)
	}
	return ok, nil
}

func (l *InstanceLock) Unlock() error {
	return l.fl.Unlock()
}
