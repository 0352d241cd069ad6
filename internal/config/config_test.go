package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValidOnceDataAndOutputSet(t *testing.T) {
	c := Default()
	c.DataDir = "/data"
	c.OutputDir = "/out"
	if err := Validate(c); err != nil {
		t.Fatalf("expected default config plus dirs to validate, got %v", err)
	}
}

func TestValidate_RejectsEqualDataAndOutputDir(t *testing.T) {
	c := Default()
	c.DataDir = "/same"
	c.OutputDir = "/same"
	if err := Validate(c); err == nil {
		t.Fatal("expected output_dir == data_dir to fail validation")
	}
}

func TestMergeTOML_MissingFileKeepsDefaults(t *testing.T) {
	base := Default()
	merged, err := MergeTOML(base, filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if merged.ModManager != BackendNone {
		t.Fatalf("expected defaults to survive a missing config file, got %q", merged.ModManager)
	}
}

func TestMergeTOML_OverlaysUserValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgpatcher.toml")
	doc := "mod_manager = \"mo2\"\nhigh_memory = true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	merged, err := MergeTOML(Default(), path)
	if err != nil {
		t.Fatal(err)
	}
	if merged.ModManager != BackendMO2 {
		t.Fatalf("expected mod_manager to be overridden to mo2, got %q", merged.ModManager)
	}
	if !merged.HighMemory {
		t.Fatal("expected high_memory to be overridden to true")
	}
	if merged.CacheDir != "cache" {
		t.Fatal("expected an un-overridden field to keep its default")
	}
}

func TestApplyFlags_OnlyOverridesSetFlags(t *testing.T) {
	base := Default()
	base.DataDir = "/data"
	base.OutputDir = "/out"

	applied := ApplyFlags(base, Flags{OutputDir: "/other"})
	if applied.DataDir != "/data" {
		t.Fatal("expected an unset flag to leave data_dir untouched")
	}
	if applied.OutputDir != "/other" {
		t.Fatal("expected output_dir to be overridden by the flag")
	}
}

func TestLoad_FullThreeLayerMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgpatcher.toml")
	if err := os.WriteFile(path, []byte("mod_manager = \"vortex\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path, Flags{DataDir: "/data", OutputDir: "/out"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ModManager != BackendVortex {
		t.Fatal("expected the TOML layer to set mod_manager")
	}
	if c.DataDir != "/data" || c.OutputDir != "/out" {
		t.Fatal("expected the flags layer to set the directories")
	}
}
