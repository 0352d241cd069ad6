package patch

import "github.com/modpatch/pgpatcher/internal/dds"

// ParallaxToComplexMaterialTransform upgrades a vanilla-parallax match
// into a complex-material match by deriving a CM-format texture from the
// matched height map (spec.md §4.5 "Transform gate": "typically by
// scheduling a derived texture on the GPU... and substituting the new
// path").
type ParallaxToComplexMaterialTransform struct {
	hook *TextureHook
}

func NewParallaxToComplexMaterialTransform(hook *TextureHook) *ParallaxToComplexMaterialTransform {
	return &ParallaxToComplexMaterialTransform{hook: hook}
}

func (t *ParallaxToComplexMaterialTransform) From() ShapeShader { return ShaderVanillaParallax }
func (t *ParallaxToComplexMaterialTransform) To() ShapeShader   { return ShaderComplexMaterial }

func (t *ParallaxToComplexMaterialTransform) Transform(m Match) Match {
	derived, err := t.hook.Derive(m.MatchedPath, "Height2ComplexMaterial", dds.FormatBC7, 0, 0, nil)
	if err != nil {
		// Per spec.md §7 this degrades gracefully: keep the original
		// match rather than aborting the shape.
		return m
	}
	return Match{
		Shader:       ShaderComplexMaterial,
		MatchedPath:  derived,
		MatchedSlots: m.MatchedSlots,
	}
}
