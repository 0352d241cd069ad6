package plugin

import (
	"testing"

	"github.com/modpatch/pgpatcher/internal/moddir"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/patch"
)

func TestFormIDAllocator_ReusesCachedKeyAndBoundsRange(t *testing.T) {
	cached := map[string]uint32{"ModA/1/cm/0": 5}
	a := NewFormIDAllocator(cached)

	id, err := a.Acquire("ModA/1/cm/0")
	if err != nil {
		t.Fatal(err)
	}
	if id != 5 {
		t.Fatalf("expected cached form ID 5 to be reused, got %d", id)
	}

	id2, err := a.Acquire("ModB/2/cm/1")
	if err != nil {
		t.Fatal(err)
	}
	if id2 == 5 {
		t.Fatal("expected a fresh form ID distinct from the reused one")
	}
}

func TestFormIDAllocator_RefusesOverflow(t *testing.T) {
	a := NewFormIDAllocator(map[string]uint32{"x": MaxFormID})
	if _, err := a.Acquire("y"); err == nil {
		t.Fatal("expected allocation to refuse overflowing the 24-bit limit")
	}
}

type fakePluginBackend struct {
	records     map[string][]AltTexRecord
	slots       map[string]nif.TextureSet
	created     []string
}

func (b *fakePluginBackend) Initialize(gameType, exePath, language string, loadOrder []string) error {
	return nil
}
func (b *fakePluginBackend) PopulateObjects() error { return nil }
func (b *fakePluginBackend) FindAltTexRecords(modelPath string, index3D int) []AltTexRecord {
	return b.records[modelPath]
}
func (b *fakePluginBackend) TXSTSlots(handle string) nif.TextureSet { return b.slots[handle] }
func (b *fakePluginBackend) CreateTXST(edid string, slots nif.TextureSet) (string, error) {
	b.created = append(b.created, edid)
	return "txst:" + edid, nil
}
func (b *fakePluginBackend) SetAltTexTXST(altTexHandle, txstHandle string) error { return nil }
func (b *fakePluginBackend) RewireModel(modelRecHandle, newModelPath string) error { return nil }
func (b *fakePluginBackend) SetIndex3D(nifPath string, old, new int, shapeName string) error {
	return nil
}
func (b *fakePluginBackend) SavePlugin(outputDir string, esmify bool) ([]string, error) {
	return nil, nil
}

func TestService_ProcessShape_DeduplicatesIdenticalTXST(t *testing.T) {
	backend := &fakePluginBackend{
		records: map[string][]AltTexRecord{
			`meshes\armor.nif`: {
				{Handle: "alt1", ModelRecHandle: "rec1", TXSTHandle: "txst-a"},
				{Handle: "alt2", ModelRecHandle: "rec2", TXSTHandle: "txst-b"},
			},
		},
		slots: map[string]nif.TextureSet{
			"txst-a": func() nif.TextureSet {
				var s nif.TextureSet
				s[nif.SlotDiffuse] = `textures\armor_d.dds`
				s[nif.SlotEnvMask] = `textures\armor_m.dds`
				return s
			}(),
			"txst-b": func() nif.TextureSet {
				var s nif.TextureSet
				s[nif.SlotDiffuse] = `textures\armor_d.dds`
				s[nif.SlotEnvMask] = `textures\armor_m.dds`
				return s
			}(),
		},
	}

	shader := &cmStub{}
	mod := moddir.NewMod("Mod", true, 0)
	resolve := func(path string) *moddir.Mod { return mod }
	svc := NewService(backend, []patch.ShaderPatcher{shader}, resolve, NewFormIDAllocator(nil))

	canApply := patch.CanApplyMap{patch.ShaderComplexMaterial: true}
	if err := svc.ProcessShape(`meshes\armor.nif`, 0, canApply, false); err != nil {
		t.Fatal(err)
	}
	if len(backend.created) != 1 {
		t.Fatalf("expected exactly one TXST created for identical slot tuples, got %d", len(backend.created))
	}

	variants := svc.Variants(`meshes\armor.nif`)
	if len(variants) != 2 {
		t.Fatalf("expected both alt-tex records recorded as variants, got %d", len(variants))
	}
	for _, v := range variants {
		if len(v.Assignments) != 1 {
			t.Fatalf("expected one TXST assignment per record, got %d for %s", len(v.Assignments), v.RecordHandle)
		}
		if v.Assignments[0].NewTXSTHandle == "" {
			t.Fatalf("expected a non-empty new TXST handle assigned to %s", v.RecordHandle)
		}
	}
}

// cmStub always matches and rewrites EnvMask to a fixed CM texture,
// independent of internal/patch.ComplexMaterialPatcher's classifier
// dependency, so this test can exercise Service in isolation.
type cmStub struct{}

func (c *cmStub) Shader() patch.ShapeShader            { return patch.ShaderComplexMaterial }
func (c *cmStub) CanApply(shape *nif.Shape) bool       { return true }
func (c *cmStub) ShouldApply(slots nif.TextureSet) []patch.Match {
	return []patch.Match{{Shader: patch.ShaderComplexMaterial, MatchedPath: "textures/cm.dds"}}
}
func (c *cmStub) Apply(old nif.TextureSet, shape *nif.Shape, m patch.Match) (nif.TextureSet, bool) {
	return c.ApplySlots(old, m), true
}
func (c *cmStub) ApplySlots(old nif.TextureSet, m patch.Match) nif.TextureSet {
	out := old
	out[nif.SlotEnvMask] = "textures/derived_cm.dds"
	return out
}
func (c *cmStub) ApplyShader(shape *nif.Shape) bool { return true }
