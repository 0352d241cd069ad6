package texture

import "github.com/modpatch/pgpatcher/internal/nif"

// inferRole implements spec.md §4.4's role-inference table: given the
// slot a texture string was found bound to, and the shader type/flags of
// the shape that bound it, decide which semantic role that use implies.
// The zero value (TypeUnknown) means "no opinion" and contributes no
// vote.
func inferRole(slot Slot, shaderType nif.ShaderType, flags nif.ShaderFlag) Type {
	has := func(f nif.ShaderFlag) bool { return flags&f != 0 }

	switch slot {
	case nif.SlotDiffuse:
		return TypeDiffuse

	case nif.SlotNormal:
		if shaderType == nif.ShaderTypeSkinTint && has(nif.FlagFaceGenRGBTint) {
			return TypeModelSpaceNormal
		}
		return TypeNormal

	case nif.SlotGlow:
		switch {
		case shaderType == nif.ShaderTypeGlowmap:
			return TypeEmissive
		case shaderType == nif.ShaderTypeDefault && has(nif.FlagUnused01):
			return TypeEmissive
		case shaderType == nif.ShaderTypeMultiLayerParallax && has(nif.FlagMLP):
			return TypeSubsurfaceColor
		}
		return TypeUnknown

	case nif.SlotParallax:
		switch {
		case shaderType == nif.ShaderTypeParallax && has(nif.FlagParallax):
			return TypeHeight
		case shaderType == nif.ShaderTypeDefault && has(nif.FlagUnused01):
			return TypeHeightPBR
		}
		return TypeUnknown

	case nif.SlotEnvMask:
		switch {
		case shaderType == nif.ShaderTypeEnvMap && has(nif.FlagEnvMapping):
			return TypeEnvironmentMask
		case shaderType == nif.ShaderTypeDefault && has(nif.FlagUnused01):
			return TypeRMAOS
		}
		return TypeUnknown

	case nif.SlotMultiLayer:
		if shaderType == nif.ShaderTypeMultiLayerParallax && has(nif.FlagMLP) {
			if has(nif.FlagUnused01) {
				return TypeCoatNormalRoughness
			}
			return TypeInnerLayer
		}
		return TypeUnknown

	case nif.SlotBacklight:
		switch {
		case shaderType == nif.ShaderTypeMultiLayerParallax && has(nif.FlagUnused01):
			return TypeSubsurfacePBR
		case has(nif.FlagBackLighting) && shaderType == nif.ShaderTypeHairTint:
			return TypeHairFlowMap
		case has(nif.FlagBackLighting):
			return TypeBacklight
		case shaderType == nif.ShaderTypeSkinTint && has(nif.FlagFaceGenRGBTint):
			return TypeSpecular
		}
		return TypeUnknown

	case nif.SlotCubemap:
		return TypeCubemap

	default:
		return TypeUnknown
	}
}
