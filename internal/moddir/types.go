// Package moddir implements C3: mod-manager directory parsing (MO2,
// Vortex, or a single anonymous "None" mod), producing a dense priority
// order over enabled mods and a canonical-path → mod ownership map.
package moddir

import "sync"

// ShapeShader mirrors internal/patch.ShapeShader without importing that
// package, to avoid a dependency cycle (patch imports moddir for
// conflict tracking in the dry run, §4.8).
type ShapeShader uint8

// Mod is spec.md §3's Mod record. Identity is by Name. Priority −1
// means unranked (loses every conflict, per spec.md §3).
type Mod struct {
	Name     string
	Enabled  bool
	Priority int
	IsNew    bool

	mu               sync.Mutex
	shadersObserved  map[ShapeShader]bool
	conflicts        map[string]bool // mod name -> true
}

const UnassignedPriority = -1

func NewMod(name string, enabled bool, priority int) *Mod {
	return &Mod{
		Name:            name,
		Enabled:         enabled,
		Priority:        priority,
		shadersObserved: make(map[ShapeShader]bool),
		conflicts:       make(map[string]bool),
	}
}

// ObserveShader records that this mod produced a candidate match for
// shader s, under the per-mod lock required by the dry-run phase
// (spec.md §4.8).
func (m *Mod) ObserveShader(s ShapeShader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shadersObserved[s] = true
}

func (m *Mod) AddConflict(otherModName string) {
	if otherModName == m.Name {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts[otherModName] = true
}

func (m *Mod) ShadersObserved() []ShapeShader {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ShapeShader, 0, len(m.shadersObserved))
	for s := range m.shadersObserved {
		out = append(out, s)
	}
	return out
}

func (m *Mod) Conflicts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.conflicts))
	for name := range m.conflicts {
		out = append(out, name)
	}
	return out
}

// Report is the {mod -> (shaders, conflicting_mods)} structure handed
// to the UI sort dialog after a dry run (spec.md §4.8).
type Report struct {
	ModName    string
	Shaders    []ShapeShader
	Conflicts  []string
}
