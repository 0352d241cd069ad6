package moddir

import (
	"fmt"
	"sort"
)

// Backend is implemented by each supported mod-manager format (spec.md
// §4.2: MO2, Vortex, None). Load returns every discovered mod plus the
// canonical-path → mod-name ownership map built by walking each mod's
// subtree. First writer wins on a duplicated file, matching
// spec.md §4.2 "first writer wins" (earlier/higher-priority mod in the
// configured order takes ownership).
type Backend interface {
	Load() ([]*Mod, map[string]string, error)
}

// Directory is the ordered collection of mods plus file ownership,
// built once at startup (spec.md §4.2).
type Directory struct {
	mods      []*Mod
	byName    map[string]*Mod
	ownership map[string]string // canonical path -> mod name
}

// Load runs backend.Load and, if useMMOrder, promotes the backend's own
// ordering onto Priority (spec.md §4.2 invariant: dense total order
// after either use_mm_order=true or explicit UI reordering).
func Load(backend Backend, useMMOrder bool) (*Directory, error) {
	mods, ownership, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("moddir: load: %w", err)
	}

	d := &Directory{
		mods:      mods,
		byName:    make(map[string]*Mod, len(mods)),
		ownership: ownership,
	}
	for _, m := range mods {
		d.byName[m.Name] = m
	}

	if useMMOrder {
		d.densifyPriorities()
	}

	return d, nil
}

// densifyPriorities assigns a dense 0..N-1 priority to enabled mods in
// their current relative order, leaving disabled mods at
// UnassignedPriority (spec.md §3: "priority -1 = unassigned").
func (d *Directory) densifyPriorities() {
	enabled := make([]*Mod, 0, len(d.mods))
	for _, m := range d.mods {
		if m.Enabled {
			enabled = append(enabled, m)
		} else {
			m.Priority = UnassignedPriority
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})
	for i, m := range enabled {
		m.Priority = i
	}
}

func (d *Directory) ModByName(name string) (*Mod, bool) {
	m, ok := d.byName[name]
	return m, ok
}

// ModForPath returns the mod owning a canonical path, if any. The None
// backend (spec.md §4.2) never populates the ownership map since it does
// no file walk; a Directory with exactly one mod is that backend's
// signature, so every path falls back to its single mod rather than
// reporting no owner.
func (d *Directory) ModForPath(canonicalPath string) (*Mod, bool) {
	name, ok := d.ownership[canonicalPath]
	if !ok {
		if len(d.mods) == 1 {
			return d.mods[0], true
		}
		return nil, false
	}
	m, ok := d.byName[name]
	return m, ok
}

func (d *Directory) Mods() []*Mod {
	out := make([]*Mod, len(d.mods))
	copy(out, d.mods)
	return out
}

// Reorder applies a user-specified priority order from the UI (dense,
// 0-indexed, enabled mods only), the other half of the §4.2 invariant.
func (d *Directory) Reorder(nameOrder []string) {
	for i, name := range nameOrder {
		if m, ok := d.byName[name]; ok {
			m.Priority = i
		}
	}
}

// DryRunReport builds the {mod -> (shaders, conflicts)} structure for
// the UI sort dialog (spec.md §4.8).
func (d *Directory) DryRunReport() []Report {
	out := make([]Report, 0, len(d.mods))
	for _, m := range d.mods {
		out = append(out, Report{
			ModName:   m.Name,
			Shaders:   m.ShadersObserved(),
			Conflicts: m.Conflicts(),
		})
	}
	return out
}
