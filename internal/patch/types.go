// Package patch implements C6 (the patcher framework) and the concrete
// shader patchers of C7 (spec.md §4.5): pluggable per-shape rules that
// compete to decide which shader family a mesh shape ends up wearing.
package patch

import "github.com/modpatch/pgpatcher/internal/nif"

// ShapeShader is the closed set of shader families the framework picks
// between. spec.md §1: "the individual shader-specific patchers are
// collaborating strategies, not the architectural core" — so this list
// only needs to be complete enough to drive selection, not to model
// every numeric constant a real shader family sets.
type ShapeShader uint8

const (
	ShaderNone ShapeShader = iota
	ShaderVanillaParallax
	ShaderComplexMaterial
	ShaderTruePBR
	ShaderDefault
)

func (s ShapeShader) String() string {
	switch s {
	case ShaderVanillaParallax:
		return "VanillaParallax"
	case ShaderComplexMaterial:
		return "ComplexMaterial"
	case ShaderTruePBR:
		return "TruePBR"
	case ShaderDefault:
		return "Default"
	default:
		return "None"
	}
}

// Match is one shader patcher's candidate binding for a shape (spec.md
// §4.5 "Shader... should_apply... returns zero or more candidate
// matches").
type Match struct {
	Shader      ShapeShader
	MatchedPath string      // canonical path of the texture that justified this match
	MatchedSlots []nif.TextureSlot
}

// ShaderPatcherMatch pairs a Match with the patcher that produced it, so
// match selection can call back into the winner (spec.md §4.5 "Match
// selection").
type ShaderPatcherMatch struct {
	Patcher ShaderPatcher
	Match   Match
}

// PreMesh runs before shader selection and may rewrite the texture-slot
// array in place (spec.md §4.5).
type PreMesh interface {
	Apply(slots *nif.TextureSet, shape *nif.Shape) bool
}

// ShaderPatcher is the only category with multiple alternatives
// competing for one shape (spec.md §4.5).
type ShaderPatcher interface {
	Shader() ShapeShader
	CanApply(shape *nif.Shape) bool
	ShouldApply(slots nif.TextureSet) []Match
	Apply(oldSlots nif.TextureSet, shape *nif.Shape, m Match) (nif.TextureSet, bool)
	ApplySlots(oldSlots nif.TextureSet, m Match) nif.TextureSet
	ApplyShader(shape *nif.Shape) bool
}

// ShaderTransform rewrites a winning shader-A match into a shader-B match
// (spec.md §4.5 "Transform gate"), typically scheduling a derived
// texture through a texture-hook patcher.
type ShaderTransform interface {
	From() ShapeShader
	To() ShapeShader
	Transform(m Match) Match
}

// PostMesh runs after shader selection (spec.md §4.5).
type PostMesh interface {
	Apply(slots *nif.TextureSet, shape *nif.Shape) bool
}

// GlobalMesh operates on the whole NIF, not a single shape (spec.md
// §4.5).
type GlobalMesh interface {
	Apply(n nif.NIF) bool
}
