package mesh

import (
	"testing"

	"github.com/modpatch/pgpatcher/internal/moddir"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/patch"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

var testMod = moddir.NewMod("TestMod", true, 0)

func allEnabledResolver(path string) *moddir.Mod {
	return testMod
}

// P2: a mesh where nothing matches and no patcher reports a
// modification is left unwritten with its original bytes.
func TestPatchMesh_NoChangeNotWritten(t *testing.T) {
	registry := patch.NewRegistry()
	registry.RegisterShader(patch.NewDefaultShaderPatcher(nil))

	engine := NewEngine(registry, allEnabledResolver, nif.MemLoader{}, NewDiffTracker(), nil)

	shape := &nif.Shape{Name: "Rock", BlockType: nif.BlockTypeBSLightingShaderProperty}
	shape.Shader.Slots[nif.SlotDiffuse] = `textures\rock_d.dds`
	m := nif.NewMemNIF(shape)
	raw, err := m.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	result, err := engine.PatchMesh(`meshes\rock.nif`, raw, vfs.New(), false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Written {
		t.Fatal("expected an unmatched mesh to be left unwritten")
	}
}

// forcedShaderStub is a minimal patch.ShaderPatcher whose ApplyShader
// flips a shape's flags so DuplicateMesh's forced-shader pass is
// observable without any texture-slot matching machinery.
type forcedShaderStub struct{ shader patch.ShapeShader }

func (s *forcedShaderStub) Shader() patch.ShapeShader             { return s.shader }
func (s *forcedShaderStub) CanApply(shape *nif.Shape) bool        { return true }
func (s *forcedShaderStub) ShouldApply(slots nif.TextureSet) []patch.Match { return nil }
func (s *forcedShaderStub) Apply(old nif.TextureSet, shape *nif.Shape, m patch.Match) (nif.TextureSet, bool) {
	return old, false
}
func (s *forcedShaderStub) ApplySlots(old nif.TextureSet, m patch.Match) nif.TextureSet { return old }
func (s *forcedShaderStub) ApplyShader(shape *nif.Shape) bool {
	shape.Shader.SetFlag(nif.FlagParallax)
	return true
}

// spec.md §4.6 "Mesh duplication": a record variant whose shader vector
// differs from the mesh's own is re-patched from a fresh copy of the
// original bytes with its override forced, and written as a distinct
// duplicate result.
func TestEngine_DuplicateMesh_AppliesForcedShaderOnFreshCopy(t *testing.T) {
	registry := patch.NewRegistry()
	registry.RegisterShader(func(string, nif.NIF) patch.ShaderPatcher {
		return &forcedShaderStub{shader: patch.ShaderComplexMaterial}
	})

	engine := NewEngine(registry, allEnabledResolver, nif.MemLoader{}, NewDiffTracker(), nil)

	shape := &nif.Shape{Name: "Body", BlockType: nif.BlockTypeTriShape}
	m := nif.NewMemNIF(shape)
	raw, err := m.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	meshShaders := map[int]patch.ShapeShader{0: patch.ShaderNone}
	variants := []RecordVariant{
		{RecordHandle: "rec-cm", Overrides: map[int]patch.ShapeShader{0: patch.ShaderComplexMaterial}},
	}

	results, err := engine.DuplicateMesh(`meshes\body.nif`, raw, meshShaders, variants)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one duplicate group, got %d", len(results))
	}
	if results[0].Path == `meshes\body.nif` {
		t.Fatal("expected the forced-shader variant to land on a pg<N> path, not the original")
	}

	reloaded, err := nif.MemLoader{}.Load(results[0].Bytes)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Shapes()[0].Shader.HasFlag(nif.FlagParallax) {
		t.Fatal("expected the duplicate's shape to carry the forced shader's flag")
	}
}

// P7: a dry run never writes a mesh, even when a shader would otherwise
// apply.
func TestPatchMesh_DryRunNeverWrites(t *testing.T) {
	registry := patch.NewRegistry()
	registry.RegisterShader(patch.NewDefaultShaderPatcher(nil))

	engine := NewEngine(registry, allEnabledResolver, nif.MemLoader{}, NewDiffTracker(), nil)

	shape := &nif.Shape{Name: "Rock", BlockType: nif.BlockTypeBSLightingShaderProperty}
	shape.Shader.Slots[nif.SlotDiffuse] = `textures\rock_d.dds`
	m := nif.NewMemNIF(shape)
	raw, err := m.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	result, err := engine.PatchMesh(`meshes\rock.nif`, raw, vfs.New(), true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Written {
		t.Fatal("expected dry run to never write")
	}
}
