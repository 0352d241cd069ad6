package vfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/pathutil"
)

// VFS is the merged, case-insensitive view described in spec.md §4.1.
// The base map is written only during Populate (single-writer) and read
// lock-free afterward; generated entries added by texture-hook patchers
// and the output writer go through their own read-write lock so readers
// of the frozen base map never contend with them.
type VFS struct {
	base map[string]*Entry

	genMu  sync.RWMutex
	gen    map[string]*Entry
	frozen bool
}

func New() *VFS {
	return &VFS{
		base: make(map[string]*Entry),
		gen:  make(map[string]*Entry),
	}
}

// Populate scans looseRoot for loose files and, if includeArchives,
// merges archive contents in the order archives is given (caller
// resolves that order via ResolveArchiveOrder — earlier entries in the
// slice win, matching Bethesda archive-load convention per spec.md
// §4.1: "for Bethesda archives, earlier load order wins").
func (v *VFS) Populate(looseRoot string, includeArchives bool, archives []Archive) error {
	if v.frozen {
		return fmt.Errorf("vfs: populate called twice")
	}

	err := filepath.WalkDir(looseRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(looseRoot, path)
		if err != nil {
			return err
		}
		key := pathutil.Canonicalize(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		// WalkDir visits each path once, so this check never replaces
		// an entry here. Populate runs once per VFS (a second call
		// fails above); further loose roots are layered on with
		// PopulateOverlay, where later calls shadow earlier ones.
		if _, exists := v.base[key]; !exists {
			v.base[key] = &Entry{
				CanonicalPath: key,
				Origin: Origin{
					Kind:    OriginLoose,
					AbsPath: path,
					ModTime: info.ModTime(),
				},
			}
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vfs: walk loose root: %w", err)
	}

	if includeArchives {
		for _, a := range archives {
			id := a.ID()
			if id == "" {
				id = uuid.NewString()
			}
			for _, internal := range a.Entries() {
				key := pathutil.Canonicalize(internal)
				if _, exists := v.base[key]; exists {
					// loose shadows archived; for archive-vs-archive,
					// earlier in `archives` (already ordered) wins.
					continue
				}
				v.base[key] = &Entry{
					CanonicalPath: key,
					Origin: Origin{
						Kind:         OriginArchive,
						ArchiveID:    id,
						InternalPath: internal,
						ModTime:      a.ModTime(),
					},
				}
			}
		}
	}

	v.frozen = true
	return nil
}

// PopulateOverlay merges one more loose-file root on top of an already
// populated VFS, with later calls shadowing earlier ones — the
// "later-loaded loose files shadow earlier" rule in spec.md §3.
func (v *VFS) PopulateOverlay(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := pathutil.Canonicalize(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		v.base[key] = &Entry{
			CanonicalPath: key,
			Origin: Origin{
				Kind:    OriginLoose,
				AbsPath: path,
				ModTime: info.ModTime(),
			},
		}
		return nil
	})
}

// Lookup returns the entry for a canonical path, checking generated
// entries first (they are newer than anything discovered at populate
// time) then the frozen base map.
func (v *VFS) Lookup(canonicalPath string) (*Entry, bool) {
	key := pathutil.Canonicalize(canonicalPath)

	v.genMu.RLock()
	if e, ok := v.gen[key]; ok {
		v.genMu.RUnlock()
		return e, true
	}
	v.genMu.RUnlock()

	e, ok := v.base[key]
	return e, ok
}

// ReadBytes returns the file contents behind canonicalPath, failing
// with core.ErrNotFound or a wrapped core.ErrIOError.
func (v *VFS) ReadBytes(canonicalPath string, archives map[string]Archive) ([]byte, error) {
	e, ok := v.Lookup(canonicalPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, canonicalPath)
	}
	switch e.Origin.Kind {
	case OriginLoose, OriginGenerated:
		f, err := os.Open(e.Origin.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrIOError, canonicalPath, err)
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrIOError, canonicalPath, err)
		}
		return b, nil
	case OriginArchive:
		a, ok := archives[e.Origin.ArchiveID]
		if !ok {
			return nil, fmt.Errorf("%w: archive %s not open", core.ErrIOError, e.Origin.ArchiveID)
		}
		b, err := a.ReadEntry(e.Origin.InternalPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrIOError, canonicalPath, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown origin kind for %s", core.ErrIOError, canonicalPath)
	}
}

// Mtime returns the modification time (seconds since epoch) of the file
// backing canonicalPath.
func (v *VFS) Mtime(canonicalPath string) (int64, error) {
	e, ok := v.Lookup(canonicalPath)
	if !ok {
		return 0, fmt.Errorf("%w: %s", core.ErrNotFound, canonicalPath)
	}
	return e.Origin.ModTime.Unix(), nil
}

// AddGenerated registers a file the patcher itself produced (a derived
// texture, a duplicate mesh) so cascading patchers observe it as an
// existing file. Idempotent for repeated calls with identical absPath;
// fails if the path already exists with a non-generated origin.
func (v *VFS) AddGenerated(canonicalPath, absPath string, owningMod string) error {
	key := pathutil.Canonicalize(canonicalPath)

	if _, ok := v.base[key]; ok {
		return fmt.Errorf("vfs: %s already present with a non-generated origin", key)
	}

	v.genMu.Lock()
	defer v.genMu.Unlock()

	if existing, ok := v.gen[key]; ok {
		if existing.Origin.AbsPath == absPath {
			return nil
		}
		return fmt.Errorf("vfs: %s already generated from a different path", key)
	}

	v.gen[key] = &Entry{
		CanonicalPath: key,
		Origin: Origin{
			Kind:    OriginGenerated,
			AbsPath: absPath,
			ModTime: time.Now(),
		},
		OwningMod: owningMod,
	}
	return nil
}

// SetOwningMod records which mod claims canonicalPath. It writes base
// entries without a lock (the same single-writer discipline as
// Populate), so it is only safe before any concurrent mesh/texture task
// starts.
func (v *VFS) SetOwningMod(canonicalPath, modName string) {
	key := pathutil.Canonicalize(canonicalPath)
	if e, ok := v.base[key]; ok {
		e.OwningMod = modName
		return
	}
	v.genMu.Lock()
	defer v.genMu.Unlock()
	if e, ok := v.gen[key]; ok {
		e.OwningMod = modName
	}
}

// Keys returns every canonical path currently known, base and
// generated. internal/app's Run takes a run's mesh paths from it.
func (v *VFS) Keys() []string {
	v.genMu.RLock()
	defer v.genMu.RUnlock()
	out := make([]string, 0, len(v.base)+len(v.gen))
	for k := range v.base {
		out = append(out, k)
	}
	for k := range v.gen {
		out = append(out, k)
	}
	return out
}
