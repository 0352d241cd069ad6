// Package nif defines the data model PGPatcher manipulates inside a
// loaded mesh and the opaque codec boundary named in spec.md §1 ("the
// low-level NIF binary codec is treated as an opaque service:
// load-from-bytes, enumerate-shapes, get/set shader properties,
// get/set texture-slot strings, save-to-bytes").
package nif

// TextureSlot indexes a TextureSet (spec.md §3).
type TextureSlot int

const (
	SlotDiffuse TextureSlot = iota
	SlotNormal
	SlotGlow
	SlotParallax
	SlotCubemap
	SlotEnvMask
	SlotMultiLayer
	SlotBacklight
	SlotUnused
	SlotCount
)

// TextureSet is the fixed-length array of 9 canonical paths described
// in spec.md §3. Empty strings mean "no texture bound on this slot".
type TextureSet [SlotCount]string

func (t TextureSet) Clone() TextureSet {
	var out TextureSet
	copy(out[:], t[:])
	return out
}

// ShaderType mirrors the NIF shader-type enum the role-inference table
// in spec.md §4.4 switches on. Not exhaustive of the real format — only
// the variants the classifier and patchers need to distinguish.
type ShaderType int

const (
	ShaderTypeDefault ShaderType = iota
	ShaderTypeParallax
	ShaderTypeEnvMap
	ShaderTypeGlowmap
	ShaderTypeSkinTint
	ShaderTypeMultiLayerParallax
	ShaderTypeHairTint
	ShaderTypeUnknown
)

// ShaderFlag is a bit in one of the NIF shader property's flag words.
// spec.md §4.4's role table references these by name.
type ShaderFlag uint32

const (
	FlagFaceGenRGBTint ShaderFlag = 1 << iota
	FlagUnused01
	FlagMLP
	FlagEnvMapping
	FlagParallax
	FlagBackLighting
)

// ShaderProperty is the mutable shader state on one shape: its family,
// texture set, and flag bits. A real codec binding exposes richer
// per-family numeric constants (spec.md §1: "their internal
// field-by-field value choices are not part of the core").
type ShaderProperty struct {
	Type    ShaderType
	Flags   ShaderFlag
	Slots   TextureSet
}

func (p *ShaderProperty) HasFlag(f ShaderFlag) bool { return p.Flags&f != 0 }
func (p *ShaderProperty) SetFlag(f ShaderFlag)      { p.Flags |= f }
func (p *ShaderProperty) ClearFlag(f ShaderFlag)    { p.Flags &^= f }

// BlockType distinguishes shapes the mesh engine knows how to patch
// from ones it must reject outright (spec.md §4.6 step 5a).
type BlockType int

const (
	BlockTypeTriShape BlockType = iota
	BlockTypeBSLightingShaderProperty
	BlockTypeEffectShader
	BlockTypeUnsupported
)

// Shape is one renderable sub-object inside a loaded NIF (spec.md §3).
// OldIndex3D is the stable pre-sort position; NewIndex3D is the position
// reported to the plugin (spec.md §4.7 step 5). No block sort runs in
// this codebase, so the duplicate pass sets NewIndex3D to OldIndex3D.
type Shape struct {
	Name       string
	BlockType  BlockType
	Shader     ShaderProperty
	OldIndex3D int
	NewIndex3D int
}

// NIF is the opaque loaded-mesh handle. A real binding wraps niflib (or
// equivalent); MemNIF below is the in-memory stand-in used by every
// test in this repo and is a legitimate implementation of the
// interface, not just a mock — PGPatcher's own patch logic never
// reaches past this interface into format internals.
type NIF interface {
	Shapes() []*Shape
	ToBytes() ([]byte, error)
}

// Loader loads raw bytes into a NIF. spec.md §1: "load-from-bytes".
type Loader interface {
	Load(raw []byte) (NIF, error)
}
