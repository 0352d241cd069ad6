package patch

import (
	"github.com/modpatch/pgpatcher/internal/moddir"
	"github.com/modpatch/pgpatcher/internal/nif"
)

// ModResolver looks up the owning mod for a canonical path, or nil if
// no mod claims it (spec.md §4.5 step 1: "resolve its owning mod from
// the VFS provenance of match.matched_path"). In production this is
// backed by internal/vfs + internal/moddir; tests supply a map-backed
// stand-in built on moddir.NewMod.
type ModResolver func(canonicalPath string) *moddir.Mod

// CanApplyMap is {shader -> bool}, built once per shape (spec.md §4.6
// step 5c).
type CanApplyMap map[ShapeShader]bool

// BuildCanApplyMap calls CanApply on every registered shader patcher for
// this shape.
func BuildCanApplyMap(shaders []ShaderPatcher, shape *nif.Shape) CanApplyMap {
	out := make(CanApplyMap, len(shaders))
	for _, s := range shaders {
		out[s.Shader()] = s.CanApply(shape)
	}
	return out
}

// candidate is one enabled mod's contribution toward a shape's winning
// match, considered by SelectWinner and cross-recorded by
// recordConflicts.
type candidate struct {
	spm  ShaderPatcherMatch
	mod  *moddir.Mod
	rank int // registry order, for the stable tie-break
}

// SelectWinner implements spec.md §4.5's "Match selection": gather every
// should_apply match from patchers whose CanApply returned true, resolve
// each match's owning mod, drop matches from disabled mods, prefer a
// mod's specific (non-None) contribution over its None matches, and keep
// the highest-priority remaining match with registry order as the tie
// break.
//
// Every enabled candidate is also recorded into its owning mod's
// shaders_observed set, and every shape with candidates from more than
// one mod has those mods cross-recorded as conflicts on each other
// (spec.md §4.8), so a later pgpatcher dryrun report can surface them
// even though this call itself may be on the real patch path.
func SelectWinner(shaders []ShaderPatcher, canApply CanApplyMap, slots nif.TextureSet, resolve ModResolver) (ShaderPatcherMatch, bool) {
	var candidates []candidate
	for rank, s := range shaders {
		if !canApply[s.Shader()] {
			continue
		}
		for _, m := range s.ShouldApply(slots) {
			mod := resolve(m.MatchedPath)
			if mod == nil || !mod.Enabled {
				continue
			}
			mod.ObserveShader(moddir.ShapeShader(s.Shader()))
			candidates = append(candidates, candidate{
				spm:  ShaderPatcherMatch{Patcher: s, Match: m},
				mod:  mod,
				rank: rank,
			})
		}
	}

	if len(candidates) == 0 {
		return ShaderPatcherMatch{}, false
	}

	recordConflicts(candidates)

	// Step 3: when a mod has at least one non-None match, drop its None
	// matches in favor of its specific contribution.
	hasSpecific := make(map[string]bool)
	for _, c := range candidates {
		if c.spm.Match.Shader != ShaderNone {
			hasSpecific[c.mod.Name] = true
		}
	}
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.spm.Match.Shader == ShaderNone && hasSpecific[c.mod.Name] {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return ShaderPatcherMatch{}, false
	}

	// Step 4: keep the highest mod priority, ties broken by registry
	// (iteration) order.
	best := filtered[0]
	for _, c := range filtered[1:] {
		if c.mod.Priority > best.mod.Priority {
			best = c
			continue
		}
		if c.mod.Priority == best.mod.Priority && c.rank < best.rank {
			best = c
		}
	}
	return best.spm, true
}

// recordConflicts adds the set of all distinct mods producing a
// candidate for this shape to each such mod's conflicts set (spec.md
// §4.8: "adds the set of all mods producing candidates on the same
// shape to each such mod's conflicts set").
func recordConflicts(candidates []candidate) {
	if len(candidates) < 2 {
		return
	}
	seen := make(map[string]*moddir.Mod, len(candidates))
	for _, c := range candidates {
		seen[c.mod.Name] = c.mod
	}
	if len(seen) < 2 {
		return
	}
	for _, a := range seen {
		for name, b := range seen {
			if name != a.Name {
				a.AddConflict(b.Name)
			}
		}
	}
}
