package mesh

import (
	"testing"

	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/patch"
)

// P5: grouping records by shader vector is deterministic regardless of
// the order variants are supplied in.
func TestDuplicate_GroupsByShaderVectorDeterministically(t *testing.T) {
	shape := &nif.Shape{Name: "Body", OldIndex3D: 0, BlockType: nif.BlockTypeTriShape}
	original := nif.NewMemNIF(shape)

	meshShaders := map[int]patch.ShapeShader{0: patch.ShaderNone}

	variants := []RecordVariant{
		{RecordHandle: "rec-matches-mesh", Overrides: map[int]patch.ShapeShader{0: patch.ShaderNone}},
		{RecordHandle: "rec-wants-cm-a", Overrides: map[int]patch.ShapeShader{0: patch.ShaderComplexMaterial}},
		{RecordHandle: "rec-wants-cm-b", Overrides: map[int]patch.ShapeShader{0: patch.ShaderComplexMaterial}},
	}

	apply := func(n nif.NIF, force map[int]patch.ShapeShader) (nif.NIF, bool) {
		return n, true
	}

	run := func() []DuplicateResult {
		results, err := Duplicate(`meshes\body.nif`, original, meshShaders, variants, apply)
		if err != nil {
			t.Fatal(err)
		}
		return results
	}

	r1 := run()
	if len(r1) != 2 {
		t.Fatalf("expected 2 groups (mesh-matching + one CM variant), got %d", len(r1))
	}

	var original_, dup DuplicateResult
	for _, r := range r1 {
		if r.Path == `meshes\body.nif` {
			original_ = r
		} else {
			dup = r
		}
	}
	if len(original_.RecordHandles) != 1 || original_.RecordHandles[0] != "rec-matches-mesh" {
		t.Fatalf("unexpected original group: %+v", original_)
	}
	if len(dup.RecordHandles) != 2 {
		t.Fatalf("expected both CM records grouped into one duplicate, got %+v", dup)
	}
	if dup.Path != `meshes/pg1/body.nif` {
		t.Fatalf("unexpected duplicate path: %s", dup.Path)
	}
}
