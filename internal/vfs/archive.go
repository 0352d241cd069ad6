package vfs

import "time"

// Archive is the opaque archive-reading service named in spec.md §1
// ("the low-level ... codec is treated as an opaque service"). A real
// binding would decode a Bethesda .bsa; this interface is the boundary
// the rest of the patcher programs against.
type Archive interface {
	ID() string
	// Entries lists every internal path the archive contains, in
	// whatever order the archive's own directory table uses.
	Entries() []string
	ReadEntry(internalPath string) ([]byte, error)
	ModTime() time.Time
}

// ResolveArchiveOrder reads a load-order list (one archive name per
// line, earliest-loaded first) and returns the subset of the given
// archives in that order. This supplements spec.md §4.1's requirement
// to "document and test" the archive overlay choice: PGPatcher resolves
// order from an explicit load-order file rather than reading the game's
// registry/ini state, grounded on original_source/src/BethesdaGame.cpp's
// role (read active plugin/archive order) without reimplementing game
// install discovery, which is out of this repo's scope.
func ResolveArchiveOrder(loadOrderNames []string, available map[string]Archive) []Archive {
	ordered := make([]Archive, 0, len(loadOrderNames))
	seen := make(map[string]bool, len(loadOrderNames))
	for _, name := range loadOrderNames {
		if a, ok := available[name]; ok && !seen[name] {
			ordered = append(ordered, a)
			seen[name] = true
		}
	}
	// Archives not named in the load-order list are left out of the
	// result.
	return ordered
}
