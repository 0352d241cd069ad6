package nif

import "testing"

func TestMemNIF_RoundTrip(t *testing.T) {
	shape := &Shape{
		Name:      "Body",
		BlockType: BlockTypeTriShape,
		Shader: ShaderProperty{
			Type: ShaderTypeDefault,
		},
	}
	shape.Shader.Slots[SlotDiffuse] = "textures\\test_d.dds"
	shape.Shader.Slots[SlotNormal] = "textures\\test_n.dds"

	m := NewMemNIF(shape)
	raw, err := m.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := MemLoader{}.Load(raw)
	if err != nil {
		t.Fatal(err)
	}

	shapes := loaded.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].Shader.Slots[SlotDiffuse] != "textures\\test_d.dds" {
		t.Fatalf("diffuse slot not preserved: %+v", shapes[0])
	}
}

// S6: non-ASCII texture-slot path rejects the owning mesh.
func TestMemNIF_RejectsNonASCIISlot(t *testing.T) {
	shape := &Shape{Name: "Body", BlockType: BlockTypeTriShape}
	shape.Shader.Slots[SlotDiffuse] = "textures\\tést.dds"

	m := NewMemNIF(shape)
	if _, err := m.ToBytes(); err == nil {
		t.Fatal("expected error serializing non-ASCII slot")
	}
}
