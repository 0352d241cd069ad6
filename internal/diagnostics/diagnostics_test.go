package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWarnings_CrossModWarningDeduplicates(t *testing.T) {
	w := NewWarnings()

	first := w.CrossModWarning(`textures\armor_d.dds`, "ModA", "ModB")
	second := w.CrossModWarning(`textures\armor_d.dds`, "ModA", "ModB")

	if !first {
		t.Fatal("expected the first warning to be newly recorded")
	}
	if second {
		t.Fatal("expected the duplicate warning to be suppressed")
	}
	if w.Count() != 1 {
		t.Fatalf("expected exactly one distinct warning, got %d", w.Count())
	}
}

func TestWarnings_MeshFailureOnePerMesh(t *testing.T) {
	w := NewWarnings()
	w.MeshFailure(`meshes\armor.nif`, errors.New("null shape"))
	w.MeshFailure(`meshes\armor.nif`, errors.New("null shape"))

	if w.Count() != 1 {
		t.Fatalf("expected one warning line per mesh, got %d", w.Count())
	}
}

func TestFileCache_ValidOnlyWhenVersionAndMtimeMatch(t *testing.T) {
	c := NewFileCache()
	c.Put(`meshes\armor.nif`, "1.0.0", 1000)

	if !c.Valid(`meshes\armor.nif`, "1.0.0", 1000) {
		t.Fatal("expected a matching version+mtime entry to be valid")
	}
	if c.Valid(`meshes\armor.nif`, "1.0.0", 1001) {
		t.Fatal("expected a changed mtime to invalidate the cache entry")
	}
	if c.Valid(`meshes\armor.nif`, "1.0.1", 1000) {
		t.Fatal("expected a version bump to invalidate the cache entry")
	}
	if c.Valid(`meshes\other.nif`, "1.0.0", 1000) {
		t.Fatal("expected an absent path to miss")
	}
}

func TestFileCache_RoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nifCache.json")

	c := NewFileCache()
	c.Put(`meshes\armor.nif`, "1.0.0", 42)
	if err := SaveFileCache(path, c); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFileCache(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Valid(`meshes\armor.nif`, "1.0.0", 42) {
		t.Fatal("expected the reloaded cache to preserve validity")
	}
}

func TestLoadFileCache_MissingFileYieldsEmptyCache(t *testing.T) {
	c, err := LoadFileCache(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatal("expected an empty cache for a missing file")
	}
}

func TestTrace_DisabledIsNoop(t *testing.T) {
	tr := NewTrace(false)
	tr.Record([]string{"meshes/armor.nif"}, "classified as complex material")

	dest := filepath.Join(t.TempDir(), "diag.json")
	if err := tr.Write(dest); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("expected a disabled trace to never touch disk")
	}
}

func TestTrace_WritesHierarchicalDocument(t *testing.T) {
	tr := NewTrace(true)
	tr.Record([]string{"meshes/armor.nif", "shape[0]"}, "matched complex material")
	tr.Record([]string{"meshes/armor.nif", "shape[1]"}, "no match")

	dest := filepath.Join(t.TempDir(), "diag.json")
	if err := tr.Write(dest); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatal("expected a non-empty diagnostics document")
	}
}
