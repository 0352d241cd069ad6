// Package texture implements C4: classifies every texture discovered in
// the VFS into a semantic role by voting across NIF shader usage, a
// filename-suffix fallback table, user overrides, and a GPU-assisted
// complex-material test (spec.md §4.4).
package texture

import "github.com/modpatch/pgpatcher/internal/nif"

// Type is the closed sum of texture roles from spec.md §3.
type Type int

const (
	TypeUnknown Type = iota
	TypeDiffuse
	TypeNormal
	TypeModelSpaceNormal
	TypeEmissive
	TypeSkinTint
	TypeSubsurfaceColor
	TypeHeight
	TypeHeightPBR
	TypeCubemap
	TypeEnvironmentMask
	TypeComplexMaterial
	TypeRMAOS
	TypeSubsurfaceTint
	TypeInnerLayer
	TypeFuzzPBR
	TypeCoatNormalRoughness
	TypeBacklight
	TypeSpecular
	TypeHairFlowMap
	TypeSubsurfacePBR
)

// Attribute is a flag over the set {CM_EnvMask, CM_Glossiness,
// CM_Metalness, CM_Height} from spec.md §3.
type Attribute uint8

const (
	AttrCMEnvMask Attribute = 1 << iota
	AttrCMGlossiness
	AttrCMMetalness
	AttrCMHeight
)

// Texture is spec.md §3's Texture record.
type Texture struct {
	CanonicalPath string
	Role          Type
	Attributes    Attribute
}

var typeNames = map[string]Type{
	"diffuse":             TypeDiffuse,
	"normal":              TypeNormal,
	"modelspacenormal":    TypeModelSpaceNormal,
	"emissive":            TypeEmissive,
	"skintint":            TypeSkinTint,
	"subsurfacecolor":     TypeSubsurfaceColor,
	"height":              TypeHeight,
	"heightpbr":           TypeHeightPBR,
	"cubemap":             TypeCubemap,
	"environmentmask":     TypeEnvironmentMask,
	"complexmaterial":     TypeComplexMaterial,
	"rmaos":               TypeRMAOS,
	"subsurfacetint":      TypeSubsurfaceTint,
	"innerlayer":          TypeInnerLayer,
	"fuzzpbr":             TypeFuzzPBR,
	"coatnormalroughness": TypeCoatNormalRoughness,
	"backlight":           TypeBacklight,
	"specular":            TypeSpecular,
	"hairflowmap":         TypeHairFlowMap,
	"subsurfacepbr":       TypeSubsurfacePBR,
}

// ParseType maps a config-file role name (case-insensitive, as written
// in pgpatcher.toml's texture_role_overrides) onto a Type, defaulting to
// TypeUnknown for anything unrecognized.
func ParseType(name string) Type {
	lower := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	if t, ok := typeNames[string(lower)]; ok {
		return t
	}
	return TypeUnknown
}

// Slot is an alias of nif.TextureSlot: the classifier's vote table is
// keyed by the same 9-slot space a loaded NIF's shader property uses.
type Slot = nif.TextureSlot

const (
	SlotDiffuse    = nif.SlotDiffuse
	SlotNormal     = nif.SlotNormal
	SlotGlow       = nif.SlotGlow
	SlotParallax   = nif.SlotParallax
	SlotCubemap    = nif.SlotCubemap
	SlotEnvMask    = nif.SlotEnvMask
	SlotMultiLayer = nif.SlotMultiLayer
	SlotBacklight  = nif.SlotBacklight
	SlotUnused     = nif.SlotUnused
)
