// Package plugin implements C9: a thin, mutex-serialized service over an
// opaque plugin-editing library (spec.md §1, §4.7 — "its contract, not
// its implementation, is what matters").
package plugin

import (
	"fmt"
	"sync"
)

// MaxFormID is the 24-bit low-word limit on form IDs assignable within
// one plugin file (spec.md §4.7 step 3, §9 "refuse to overflow the
// 24-bit limit").
const MaxFormID = 0x00FFFFFF

// FormIDAllocator hands out stable form IDs, preferring to reuse a
// previously-cached ID for the same cache key before minting a new one
// (spec.md §4.7 step 3's allocation policy). The free-slot-reuse shape
// mirrors the host engine's identifier pool
// (engine/core/identifier.go's IdentifierAquireNewID/ReleaseID), adapted
// here to a bounded 24-bit space with an explicit "next fresh slot"
// cursor instead of a growable owner slice.
type FormIDAllocator struct {
	mu sync.Mutex

	byKey map[string]uint32 // cache_key -> form_id, reused across runs
	used  map[uint32]bool
	next  uint32
}

// NewFormIDAllocator seeds the allocator from a previous run's
// txstFormIDs.json cache (reserving every cached ID before serving any
// new allocation, per spec.md §9).
func NewFormIDAllocator(cached map[string]uint32) *FormIDAllocator {
	a := &FormIDAllocator{
		byKey: make(map[string]uint32, len(cached)),
		used:  make(map[uint32]bool, len(cached)),
		next:  1,
	}
	for key, id := range cached {
		a.byKey[key] = id
		a.used[id] = true
		if id >= a.next {
			a.next = id + 1
		}
	}
	return a
}

// Acquire returns the form ID for cacheKey, reusing the cached value
// while that ID is still reserved (not Released), else minting the next
// unused ID in range.
func (a *FormIDAllocator) Acquire(cacheKey string) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id, ok := a.byKey[cacheKey]; ok && a.used[id] {
		return id, nil
	}

	for a.used[a.next] {
		a.next++
	}
	if a.next > MaxFormID {
		return 0, fmt.Errorf("plugin: form ID space exhausted (24-bit limit %#x)", MaxFormID)
	}

	id := a.next
	a.next++
	a.used[id] = true
	a.byKey[cacheKey] = id
	return id, nil
}

// Release frees a form ID, e.g. when a dry run discards a tentative
// allocation.
func (a *FormIDAllocator) Release(id uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.used, id)
}

// Snapshot returns the cache_key -> form_id map for persistence into
// txstFormIDs.json.
func (a *FormIDAllocator) Snapshot() map[string]uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]uint32, len(a.byKey))
	for k, v := range a.byKey {
		out[k] = v
	}
	return out
}

// CacheKey builds the stable key spec.md §6 describes:
// "<alt_tex_mod>/<alt_tex_form_id>/<match_type>/<old_index3d>".
func CacheKey(altTexMod string, altTexFormID uint32, matchType string, oldIndex3D int) string {
	return fmt.Sprintf("%s/%x/%s/%d", altTexMod, altTexFormID, matchType, oldIndex3D)
}

// EDID builds the editor ID for a newly created TXST record (spec.md
// §4.7 step 3: "EDID PG_<stem>_<form_id-hex>").
func EDID(stem string, formID uint32) string {
	return fmt.Sprintf("PG_%s_%x", stem, formID)
}
