package vfs

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/pathutil"
)

// Watcher feeds newly-created loose files into a VFS's generated map
// while a long-lived session is open, the same role fsnotify plays in
// the teacher's engine/assets.AssetManager (hot asset reload). Populate
// always runs a synchronous walk first; Watcher only covers files
// dropped in after that walk completes (e.g. a mod manager finishing a
// deploy while a dry-run report dialog is still open).
type Watcher struct {
	vfs  *VFS
	root string
	fsw  *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
}

func NewWatcher(v *VFS, root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{vfs: v, root: root, fsw: fsw}, nil
}

// Run blocks, dispatching fsnotify events until Close is called. Call
// it from its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.root, ev.Name)
			if err != nil {
				continue
			}
			key := pathutil.Canonicalize(rel)
			if err := w.vfs.AddGenerated(key, ev.Name, ""); err != nil {
				core.LogDebug("vfs watcher: %v", err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			core.LogWarn("vfs watcher error: %v", err)
		}
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
