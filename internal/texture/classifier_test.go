package texture

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modpatch/pgpatcher/internal/dds"
	"github.com/modpatch/pgpatcher/internal/gpu"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

type fakeCMBackend struct {
	meta   *dds.Metadata
	pixels [4]uint32
}

func (b *fakeCMBackend) LoadDDS(path string) (*dds.Image, error) {
	return &dds.Image{Metadata: *b.meta}, nil
}
func (b *fakeCMBackend) LoadDDSMetadata(path string) (*dds.Metadata, error) { return b.meta, nil }
func (b *fakeCMBackend) CountChannelPopulations(img *dds.Image) ([4]uint32, error) {
	return b.pixels, nil
}
func (b *fakeCMBackend) ApplyShader(in *dds.Image, outFormat dds.Format, outW, outH int, shader *gpu.ComputeShader, params map[string]float32) (*dds.Image, error) {
	return nil, errors.New("not used")
}
func (b *fakeCMBackend) InitShaders() (map[string]*gpu.ComputeShader, error) {
	return map[string]*gpu.ComputeShader{}, nil
}

func writeMesh(t *testing.T, v *vfs.VFS, root, relPath string, shapes ...*nif.Shape) {
	t.Helper()
	m := nif.NewMemNIF(shapes...)
	raw, err := m.ToBytes()
	if err != nil {
		t.Fatal(err)
	}
	full := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(relPath, `\`, "/")))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

// P6: classifying the same set of meshes twice yields identical buckets
// (the classifier result depends only on input data, not scan order).
func TestClassifier_StableAcrossRuns(t *testing.T) {
	root := t.TempDir()
	v := vfs.New()

	shape := &nif.Shape{Name: "Armor", BlockType: nif.BlockTypeTriShape}
	shape.Shader.Type = nif.ShaderTypeDefault
	shape.Shader.Slots[nif.SlotDiffuse] = `textures\armor_d.dds`
	shape.Shader.Slots[nif.SlotNormal] = `textures\armor_n.dds`
	writeMesh(t, v, root, `meshes\armor.nif`, shape)

	if err := v.Populate(root, false, nil); err != nil {
		t.Fatal(err)
	}

	run := func() (Texture, Texture) {
		c := NewClassifier(v, nil, nif.MemLoader{}, nil, nil, nil)
		if err := c.ScanNIF(`meshes\armor.nif`); err != nil {
			t.Fatal(err)
		}
		c.Finalize()
		d, ok := c.TextureType(`textures\armor_d.dds`)
		if !ok {
			t.Fatal("expected diffuse texture classified")
		}
		n, ok := c.TextureType(`textures\armor_n.dds`)
		if !ok {
			t.Fatal("expected normal texture classified")
		}
		return d, n
	}

	d1, n1 := run()
	d2, n2 := run()

	if d1 != d2 || n1 != n2 {
		t.Fatalf("classification not stable across runs: %+v/%+v vs %+v/%+v", d1, n1, d2, n2)
	}
	if d1.Role != TypeDiffuse || n1.Role != TypeNormal {
		t.Fatalf("unexpected roles: diffuse=%v normal=%v", d1.Role, n1.Role)
	}
}

// P9: the complex-material classifier's synthetic cases from spec.md
// §4.4.1.
func TestClassifyComplexMaterial(t *testing.T) {
	cases := []struct {
		name     string
		meta     dds.Metadata
		pixels   [4]uint32
		wantIsCM bool
		wantAttr Attribute
	}{
		{
			name:     "opaque alpha mode is never CM",
			meta:     dds.Metadata{Width: 4, Height: 4, Format: dds.FormatBC3, Alpha: dds.AlphaModeOpaque},
			pixels:   [4]uint32{1, 1, 1, 0},
			wantIsCM: false,
		},
		{
			name:     "unsupported format is never CM",
			meta:     dds.Metadata{Width: 4, Height: 4, Format: dds.FormatBC1, Alpha: dds.AlphaModeStraight},
			pixels:   [4]uint32{1, 1, 1, 1},
			wantIsCM: false,
		},
		{
			name:     "dense alpha means opacity not height",
			meta:     dds.Metadata{Width: 4, Height: 4, Format: dds.FormatBC3, Alpha: dds.AlphaModeStraight},
			pixels:   [4]uint32{1, 1, 1, 16},
			wantIsCM: false,
		},
		{
			name:     "sparse alpha with RGB population is CM",
			meta:     dds.Metadata{Width: 4, Height: 4, Format: dds.FormatBC3, Alpha: dds.AlphaModeStraight},
			pixels:   [4]uint32{1, 2, 0, 3},
			wantIsCM: true,
			wantAttr: AttrCMEnvMask | AttrCMGlossiness,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeCMBackend{meta: &tc.meta, pixels: tc.pixels}
			dev := gpu.NewDevice(backend)

			res := classifyComplexMaterial(dev, "textures/pbr/test_m.dds")
			if res.isCM != tc.wantIsCM {
				t.Fatalf("isCM = %v, want %v", res.isCM, tc.wantIsCM)
			}
			if tc.wantIsCM && res.attributes != tc.wantAttr {
				t.Fatalf("attributes = %v, want %v", res.attributes, tc.wantAttr)
			}
		})
	}
}
