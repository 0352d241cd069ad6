package patch

import (
	"testing"

	"github.com/modpatch/pgpatcher/internal/moddir"
	"github.com/modpatch/pgpatcher/internal/nif"
)

type stubShader struct {
	shader  ShapeShader
	matches []Match
}

func (s *stubShader) Shader() ShapeShader                   { return s.shader }
func (s *stubShader) CanApply(shape *nif.Shape) bool        { return true }
func (s *stubShader) ShouldApply(slots nif.TextureSet) []Match { return s.matches }
func (s *stubShader) Apply(old nif.TextureSet, shape *nif.Shape, m Match) (nif.TextureSet, bool) {
	return old, true
}
func (s *stubShader) ApplySlots(old nif.TextureSet, m Match) nif.TextureSet { return old }
func (s *stubShader) ApplyShader(shape *nif.Shape) bool                    { return true }

// P8: when two mods both produce a candidate match for the same shape,
// the higher-priority mod wins regardless of patcher registration order.
func TestSelectWinner_HigherPriorityModWins(t *testing.T) {
	low := &stubShader{shader: ShaderVanillaParallax, matches: []Match{{Shader: ShaderVanillaParallax, MatchedPath: "textures/low_p.dds"}}}
	high := &stubShader{shader: ShaderComplexMaterial, matches: []Match{{Shader: ShaderComplexMaterial, MatchedPath: "textures/high_m.dds"}}}

	shaders := []ShaderPatcher{low, high}
	canApply := CanApplyMap{ShaderVanillaParallax: true, ShaderComplexMaterial: true}

	modLow := moddir.NewMod("ModLow", true, 0)
	modHigh := moddir.NewMod("ModHigh", true, 5)
	resolve := func(path string) *moddir.Mod {
		switch path {
		case "textures/low_p.dds":
			return modLow
		case "textures/high_m.dds":
			return modHigh
		}
		return nil
	}

	winner, ok := SelectWinner(shaders, canApply, nif.TextureSet{}, resolve)
	if !ok {
		t.Fatal("expected a winner")
	}
	if winner.Match.Shader != ShaderComplexMaterial {
		t.Fatalf("expected the higher-priority mod's match to win, got %v", winner.Match.Shader)
	}
}

// A disabled mod's match never wins, even at higher priority.
func TestSelectWinner_DisabledModDropped(t *testing.T) {
	disabledHigh := &stubShader{shader: ShaderComplexMaterial, matches: []Match{{Shader: ShaderComplexMaterial, MatchedPath: "textures/disabled_m.dds"}}}
	enabledLow := &stubShader{shader: ShaderVanillaParallax, matches: []Match{{Shader: ShaderVanillaParallax, MatchedPath: "textures/enabled_p.dds"}}}

	shaders := []ShaderPatcher{disabledHigh, enabledLow}
	canApply := CanApplyMap{ShaderComplexMaterial: true, ShaderVanillaParallax: true}

	disabled := moddir.NewMod("Disabled", false, 99)
	enabled := moddir.NewMod("Enabled", true, 0)
	resolve := func(path string) *moddir.Mod {
		switch path {
		case "textures/disabled_m.dds":
			return disabled
		case "textures/enabled_p.dds":
			return enabled
		}
		return nil
	}

	winner, ok := SelectWinner(shaders, canApply, nif.TextureSet{}, resolve)
	if !ok {
		t.Fatal("expected a winner")
	}
	if winner.Match.Shader != ShaderVanillaParallax {
		t.Fatalf("expected the disabled mod's match to be dropped, got %v", winner.Match.Shader)
	}
}

// spec.md §4.8: two mods producing candidates on the same shape are
// cross-recorded as conflicting, and each is recorded as having
// observed its own candidate shader.
func TestSelectWinner_RecordsShaderObservationsAndConflicts(t *testing.T) {
	low := &stubShader{shader: ShaderVanillaParallax, matches: []Match{{Shader: ShaderVanillaParallax, MatchedPath: "textures/low_p.dds"}}}
	high := &stubShader{shader: ShaderComplexMaterial, matches: []Match{{Shader: ShaderComplexMaterial, MatchedPath: "textures/high_m.dds"}}}

	shaders := []ShaderPatcher{low, high}
	canApply := CanApplyMap{ShaderVanillaParallax: true, ShaderComplexMaterial: true}

	modLow := moddir.NewMod("ModLow", true, 0)
	modHigh := moddir.NewMod("ModHigh", true, 5)
	resolve := func(path string) *moddir.Mod {
		switch path {
		case "textures/low_p.dds":
			return modLow
		case "textures/high_m.dds":
			return modHigh
		}
		return nil
	}

	if _, ok := SelectWinner(shaders, canApply, nif.TextureSet{}, resolve); !ok {
		t.Fatal("expected a winner")
	}

	if got := modLow.ShadersObserved(); len(got) != 1 || got[0] != moddir.ShapeShader(ShaderVanillaParallax) {
		t.Fatalf("expected ModLow to have observed VanillaParallax, got %v", got)
	}
	if got := modHigh.ShadersObserved(); len(got) != 1 || got[0] != moddir.ShapeShader(ShaderComplexMaterial) {
		t.Fatalf("expected ModHigh to have observed ComplexMaterial, got %v", got)
	}

	lowConflicts := modLow.Conflicts()
	if len(lowConflicts) != 1 || lowConflicts[0] != "ModHigh" {
		t.Fatalf("expected ModLow to conflict with ModHigh, got %v", lowConflicts)
	}
	highConflicts := modHigh.Conflicts()
	if len(highConflicts) != 1 || highConflicts[0] != "ModLow" {
		t.Fatalf("expected ModHigh to conflict with ModLow, got %v", highConflicts)
	}
}

// A mod offering both a specific match and a None match has its None
// match dropped in favor of the specific one (spec.md §4.5 step 3).
func TestSelectWinner_NoneDroppedWhenModHasSpecificMatch(t *testing.T) {
	specific := &stubShader{shader: ShaderTruePBR, matches: []Match{{Shader: ShaderTruePBR, MatchedPath: "textures/mod_rmaos.dds"}}}
	none := &stubShader{shader: ShaderNone, matches: []Match{{Shader: ShaderNone, MatchedPath: "textures/mod_d.dds"}}}

	shaders := []ShaderPatcher{none, specific}
	canApply := CanApplyMap{ShaderNone: true, ShaderTruePBR: true}

	sameMod := moddir.NewMod("SameMod", true, 1)
	resolve := func(path string) *moddir.Mod {
		return sameMod
	}

	winner, ok := SelectWinner(shaders, canApply, nif.TextureSet{}, resolve)
	if !ok {
		t.Fatal("expected a winner")
	}
	if winner.Match.Shader != ShaderTruePBR {
		t.Fatalf("expected the specific match to win over None, got %v", winner.Match.Shader)
	}
}
