package mesh

import (
	"hash/crc32"

	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/patch"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

// PluginPort is the narrow slice of the plugin patcher (C9) the mesh
// engine needs during shape iteration (spec.md §4.6 step 5g: "also ask
// the plugin patcher what to do for every alternate-texture record that
// references this shape"). Kept as an interface here so internal/mesh
// never imports internal/plugin.
type PluginPort interface {
	ProcessShape(nifPath string, oldIndex3D int, canApply patch.CanApplyMap, dryRun bool) error
}

// Engine drives the patcher framework across every shape of a mesh
// (spec.md §4.6).
type Engine struct {
	registry *patch.Registry
	resolve  patch.ModResolver
	loader   nif.Loader
	diff     *DiffTracker
	plugin   PluginPort
}

func NewEngine(registry *patch.Registry, resolve patch.ModResolver, loader nif.Loader, diff *DiffTracker, plugin PluginPort) *Engine {
	return &Engine{registry: registry, resolve: resolve, loader: loader, diff: diff, plugin: plugin}
}

// Result is what PatchMesh reports back to the caller for duplication
// and cache bookkeeping.
type Result struct {
	Written        bool
	Bytes          []byte
	ShadersApplied map[int]patch.ShapeShader // old_index3d -> winning shader
	CRC32Original  uint32
	CRC32Patched   uint32
}

// PatchMesh implements spec.md §4.6 steps 1-8 for one mesh.
func (e *Engine) PatchMesh(canonicalPath string, raw []byte, v *vfs.VFS, dryRun bool) (Result, error) {
	crcOriginal := crc32.ChecksumIEEE(raw)

	loaded, err := e.loader.Load(raw)
	if err != nil {
		core.LogWarn("mesh engine: rejecting %s: %v", canonicalPath, err)
		return Result{}, err
	}

	preMesh := e.registry.BuildPreMesh(canonicalPath, loaded)
	shaders := e.registry.BuildShaders(canonicalPath, loaded)
	postMesh := e.registry.BuildPostMesh(canonicalPath, loaded)
	globalMesh := e.registry.BuildGlobalMesh(canonicalPath, loaded)

	modified := false
	shadersApplied := make(map[int]patch.ShapeShader)

	for _, shape := range loaded.Shapes() {
		if shape.BlockType != nif.BlockTypeTriShape && shape.BlockType != nif.BlockTypeBSLightingShaderProperty {
			// Unsupported shapes keep unchanged bytes (spec.md §4.6 step
			// 5a).
			continue
		}

		slots := shape.Shader.Slots

		for _, p := range preMesh {
			if p.Apply(&slots, shape) {
				modified = true
			}
		}

		canApply := patch.BuildCanApplyMap(shaders, shape)
		winner, ok := patch.SelectWinner(shaders, canApply, slots, e.resolve)
		if ok {
			m := winner.Match
			if t, hasTransform := e.registry.Transform(m.Shader); hasTransform {
				m = t.Transform(m)
			}
			if !dryRun {
				newSlots, nifModified := winner.Patcher.Apply(slots, shape, m)
				slots = newSlots
				if nifModified {
					modified = true
				}
			}
			shadersApplied[shape.OldIndex3D] = m.Shader
			shape.Shader.Slots = slots
		}

		for _, p := range postMesh {
			if p.Apply(&slots, shape) {
				modified = true
				shape.Shader.Slots = slots
			}
		}

		if e.plugin != nil && !dryRun {
			if err := e.plugin.ProcessShape(canonicalPath, shape.OldIndex3D, canApply, dryRun); err != nil {
				core.LogDebug("mesh engine: plugin integration for %s shape %s: %v", canonicalPath, shape.Name, err)
			}
		}
	}

	for _, g := range globalMesh {
		if g.Apply(loaded) {
			modified = true
		}
	}

	if dryRun || !modified {
		return Result{Written: false, ShadersApplied: shadersApplied, CRC32Original: crcOriginal}, nil
	}

	out, err := loaded.ToBytes()
	if err != nil {
		core.LogWarn("mesh engine: serializing %s: %v", canonicalPath, err)
		return Result{}, err
	}
	crcPatched := crc32.ChecksumIEEE(out)
	if e.diff != nil {
		e.diff.Record(canonicalPath, crcOriginal, crcPatched)
	}

	return Result{
		Written:        true,
		Bytes:          out,
		ShadersApplied: shadersApplied,
		CRC32Original:  crcOriginal,
		CRC32Patched:   crcPatched,
	}, nil
}

// DuplicateMesh implements spec.md §4.6's re-run of step 5 per duplicate
// group: a fresh copy of the mesh is loaded from raw bytes for every
// variant whose shader vector differs from the mesh's own, and only
// ApplyShader is run against it (the plugin, not the shader patchers'
// matched texture, owns the duplicate's eventual texture binding via
// AssignMesh). The duplicate pass never touches e.plugin: mesh
// duplication must not recurse (spec.md §4.6).
func (e *Engine) DuplicateMesh(canonicalPath string, raw []byte, shadersApplied map[int]patch.ShapeShader, variants []RecordVariant) ([]DuplicateResult, error) {
	original, err := e.loader.Load(raw)
	if err != nil {
		return nil, err
	}

	apply := func(_ nif.NIF, forceShader map[int]patch.ShapeShader) (nif.NIF, bool) {
		fresh, err := e.loader.Load(raw)
		if err != nil {
			return nil, false
		}
		shaders := e.registry.BuildShaders(canonicalPath, fresh)
		byShader := make(map[patch.ShapeShader]patch.ShaderPatcher, len(shaders))
		for _, s := range shaders {
			byShader[s.Shader()] = s
		}
		modified := false
		for _, shape := range fresh.Shapes() {
			if shape.BlockType != nif.BlockTypeTriShape && shape.BlockType != nif.BlockTypeBSLightingShaderProperty {
				continue
			}
			shader, ok := forceShader[shape.OldIndex3D]
			if !ok {
				continue
			}
			shape.NewIndex3D = shape.OldIndex3D
			if s, ok := byShader[shader]; ok && s.ApplyShader(shape) {
				modified = true
			}
		}
		return fresh, modified
	}

	return Duplicate(canonicalPath, original, shadersApplied, variants, apply)
}
