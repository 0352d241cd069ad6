package texture

import "strings"

// suffixEntry is one row of spec.md §6's texture suffix table.
type suffixEntry struct {
	suffix   string
	slot     Slot
	role     Type
	pbrOnly  bool // only matches when the path is under textures\pbr\
}

// suffixTable is ordered longest-suffix-first so the "longest match wins"
// rule in spec.md §6 falls out of a simple linear scan.
var suffixTable = []suffixEntry{
	{suffix: "_envmask", slot: SlotEnvMask, role: TypeEnvironmentMask},
	{suffix: "_rmaos", slot: SlotEnvMask, role: TypeRMAOS},
	{suffix: "_flow", slot: SlotBacklight, role: TypeHairFlowMap},
	{suffix: "_msn", slot: SlotNormal, role: TypeModelSpaceNormal},
	{suffix: "_cnr", slot: SlotMultiLayer, role: TypeCoatNormalRoughness},
	{suffix: "_em", slot: SlotEnvMask, role: TypeEnvironmentMask},
	{suffix: "_sk", slot: SlotGlow, role: TypeSkinTint},
	{suffix: "_bl", slot: SlotBacklight, role: TypeBacklight},
	{suffix: "_n", slot: SlotNormal, role: TypeNormal},
	{suffix: "_g", slot: SlotGlow, role: TypeEmissive},
	{suffix: "_p", slot: SlotParallax, role: TypeHeightPBR, pbrOnly: true},
	{suffix: "_p", slot: SlotParallax, role: TypeHeight},
	{suffix: "_e", slot: SlotCubemap, role: TypeCubemap},
	{suffix: "_m", slot: SlotEnvMask, role: TypeEnvironmentMask},
	{suffix: "_s", slot: SlotMultiLayer, role: TypeSubsurfaceTint},
	{suffix: "_i", slot: SlotMultiLayer, role: TypeInnerLayer},
	{suffix: "_f", slot: SlotMultiLayer, role: TypeFuzzPBR},
	{suffix: "_b", slot: SlotBacklight, role: TypeBacklight},
	{suffix: "_d", slot: SlotDiffuse, role: TypeDiffuse},
}

// pbrDir is the path prefix that distinguishes the two "_p" suffix rows.
const pbrDir = `textures\pbr\`

// classifyBySuffix implements spec.md §6's fallback table: case-insensitive
// match on the filename stem, longest suffix wins, no-suffix defaults to
// Diffuse/Diffuse. canonicalPath must already be lowercase (VFS keys are
// canonicalized); the suffix comparison itself does no case folding.
func classifyBySuffix(canonicalPath string) (Slot, Type) {
	stem := stemOf(canonicalPath)
	underPBR := strings.Contains(canonicalPath, pbrDir)

	for _, e := range suffixTable {
		if e.pbrOnly && !underPBR {
			continue
		}
		if strings.HasSuffix(stem, e.suffix) {
			return e.slot, e.role
		}
	}
	return SlotDiffuse, TypeDiffuse
}

func stemOf(canonicalPath string) string {
	base := canonicalPath
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}
