package patch

import (
	"strings"

	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/texture"
)

// base holds what every concrete shader patcher needs: the classified
// texture map to look up a role-specific texture sharing a shape's
// diffuse base prefix, and the NIF path it was built for (stored, but
// not read by any patcher method).
type base struct {
	classifier *texture.Classifier
	nifPath    string
}

func basePrefix(canonicalDiffusePath string) string {
	stem := canonicalDiffusePath
	if i := strings.LastIndexAny(stem, `/\`); i >= 0 {
		stem = stem[i+1:]
	}
	if i := strings.LastIndex(stem, "."); i >= 0 {
		stem = stem[:i]
	}
	return strings.TrimSuffix(stem, "_d")
}

// VanillaParallaxPatcher binds a Height texture sharing the shape's
// diffuse base name onto the Parallax slot, switching the shape to the
// vanilla parallax shader family (spec.md §4.4's Height role, §4.5).
type VanillaParallaxPatcher struct{ base }

func NewVanillaParallaxPatcher(c *texture.Classifier) ShaderFactory {
	return func(path string, n nif.NIF) ShaderPatcher {
		return &VanillaParallaxPatcher{base{classifier: c, nifPath: path}}
	}
}

func (p *VanillaParallaxPatcher) Shader() ShapeShader { return ShaderVanillaParallax }

func (p *VanillaParallaxPatcher) CanApply(shape *nif.Shape) bool {
	return shape.BlockType == nif.BlockTypeBSLightingShaderProperty
}

func (p *VanillaParallaxPatcher) ShouldApply(slots nif.TextureSet) []Match {
	diffuse := slots[nif.SlotDiffuse]
	if diffuse == "" || p.classifier == nil {
		return nil
	}
	tex, ok := p.classifier.Bucket(nif.SlotParallax, basePrefix(diffuse))
	if !ok || tex.Role != texture.TypeHeight {
		return nil
	}
	return []Match{{Shader: ShaderVanillaParallax, MatchedPath: tex.CanonicalPath, MatchedSlots: []nif.TextureSlot{nif.SlotParallax}}}
}

func (p *VanillaParallaxPatcher) Apply(oldSlots nif.TextureSet, shape *nif.Shape, m Match) (nif.TextureSet, bool) {
	newSlots := p.ApplySlots(oldSlots, m)
	shape.Shader.Type = nif.ShaderTypeParallax
	shape.Shader.SetFlag(nif.FlagParallax)
	return newSlots, true
}

func (p *VanillaParallaxPatcher) ApplySlots(oldSlots nif.TextureSet, m Match) nif.TextureSet {
	out := oldSlots.Clone()
	out[nif.SlotParallax] = m.MatchedPath
	return out
}

func (p *VanillaParallaxPatcher) ApplyShader(shape *nif.Shape) bool {
	shape.Shader.Type = nif.ShaderTypeParallax
	shape.Shader.SetFlag(nif.FlagParallax)
	return true
}

// ComplexMaterialPatcher binds a ComplexMaterial-classified texture onto
// the EnvMask slot (spec.md §4.4.1).
type ComplexMaterialPatcher struct{ base }

func NewComplexMaterialPatcher(c *texture.Classifier) ShaderFactory {
	return func(path string, n nif.NIF) ShaderPatcher {
		return &ComplexMaterialPatcher{base{classifier: c, nifPath: path}}
	}
}

func (p *ComplexMaterialPatcher) Shader() ShapeShader { return ShaderComplexMaterial }

func (p *ComplexMaterialPatcher) CanApply(shape *nif.Shape) bool {
	return shape.BlockType == nif.BlockTypeBSLightingShaderProperty
}

func (p *ComplexMaterialPatcher) ShouldApply(slots nif.TextureSet) []Match {
	diffuse := slots[nif.SlotDiffuse]
	if diffuse == "" || p.classifier == nil {
		return nil
	}
	tex, ok := p.classifier.Bucket(nif.SlotEnvMask, basePrefix(diffuse))
	if !ok || tex.Role != texture.TypeComplexMaterial {
		return nil
	}
	return []Match{{Shader: ShaderComplexMaterial, MatchedPath: tex.CanonicalPath, MatchedSlots: []nif.TextureSlot{nif.SlotEnvMask}}}
}

func (p *ComplexMaterialPatcher) Apply(oldSlots nif.TextureSet, shape *nif.Shape, m Match) (nif.TextureSet, bool) {
	newSlots := p.ApplySlots(oldSlots, m)
	shape.Shader.Type = nif.ShaderTypeEnvMap
	shape.Shader.SetFlag(nif.FlagEnvMapping)
	return newSlots, true
}

func (p *ComplexMaterialPatcher) ApplySlots(oldSlots nif.TextureSet, m Match) nif.TextureSet {
	out := oldSlots.Clone()
	out[nif.SlotEnvMask] = m.MatchedPath
	return out
}

func (p *ComplexMaterialPatcher) ApplyShader(shape *nif.Shape) bool {
	shape.Shader.Type = nif.ShaderTypeEnvMap
	shape.Shader.SetFlag(nif.FlagEnvMapping)
	return true
}

// TruePBRPatcher binds an RMAOS texture onto the EnvMask slot under the
// multi-layer-parallax shader family.
type TruePBRPatcher struct{ base }

func NewTruePBRPatcher(c *texture.Classifier) ShaderFactory {
	return func(path string, n nif.NIF) ShaderPatcher {
		return &TruePBRPatcher{base{classifier: c, nifPath: path}}
	}
}

func (p *TruePBRPatcher) Shader() ShapeShader { return ShaderTruePBR }

func (p *TruePBRPatcher) CanApply(shape *nif.Shape) bool {
	return shape.BlockType == nif.BlockTypeBSLightingShaderProperty
}

func (p *TruePBRPatcher) ShouldApply(slots nif.TextureSet) []Match {
	diffuse := slots[nif.SlotDiffuse]
	if diffuse == "" || p.classifier == nil {
		return nil
	}
	tex, ok := p.classifier.Bucket(nif.SlotEnvMask, basePrefix(diffuse))
	if !ok || tex.Role != texture.TypeRMAOS {
		return nil
	}
	return []Match{{Shader: ShaderTruePBR, MatchedPath: tex.CanonicalPath, MatchedSlots: []nif.TextureSlot{nif.SlotEnvMask}}}
}

func (p *TruePBRPatcher) Apply(oldSlots nif.TextureSet, shape *nif.Shape, m Match) (nif.TextureSet, bool) {
	newSlots := p.ApplySlots(oldSlots, m)
	shape.Shader.Type = nif.ShaderTypeMultiLayerParallax
	shape.Shader.SetFlag(nif.FlagMLP)
	shape.Shader.SetFlag(nif.FlagUnused01)
	return newSlots, true
}

func (p *TruePBRPatcher) ApplySlots(oldSlots nif.TextureSet, m Match) nif.TextureSet {
	out := oldSlots.Clone()
	out[nif.SlotEnvMask] = m.MatchedPath
	return out
}

func (p *TruePBRPatcher) ApplyShader(shape *nif.Shape) bool {
	shape.Shader.Type = nif.ShaderTypeMultiLayerParallax
	shape.Shader.SetFlag(nif.FlagMLP)
	shape.Shader.SetFlag(nif.FlagUnused01)
	return true
}

// DefaultShaderPatcher is the universal fallback: it always can-apply
// and always offers exactly one ShaderNone match with no bound texture,
// so a shape with no competing evidence still resolves to a winner
// (spec.md §4.5 step 3 relies on a None match existing to be dropped in
// favor of a specific one).
type DefaultShaderPatcher struct{ base }

func NewDefaultShaderPatcher(c *texture.Classifier) ShaderFactory {
	return func(path string, n nif.NIF) ShaderPatcher {
		return &DefaultShaderPatcher{base{classifier: c, nifPath: path}}
	}
}

func (p *DefaultShaderPatcher) Shader() ShapeShader                 { return ShaderNone }
func (p *DefaultShaderPatcher) CanApply(shape *nif.Shape) bool      { return true }
func (p *DefaultShaderPatcher) ShouldApply(slots nif.TextureSet) []Match {
	return []Match{{Shader: ShaderNone, MatchedPath: slots[nif.SlotDiffuse]}}
}

func (p *DefaultShaderPatcher) Apply(oldSlots nif.TextureSet, shape *nif.Shape, m Match) (nif.TextureSet, bool) {
	return oldSlots, false
}

func (p *DefaultShaderPatcher) ApplySlots(oldSlots nif.TextureSet, m Match) nif.TextureSet {
	return oldSlots
}

func (p *DefaultShaderPatcher) ApplyShader(shape *nif.Shape) bool {
	shape.Shader.Type = nif.ShaderTypeDefault
	return false
}
