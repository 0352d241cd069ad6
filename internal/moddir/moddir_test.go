package moddir

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMO2Backend_ParsesModlistAndOwnership(t *testing.T) {
	instance := t.TempDir()
	ini := "[General]\nselected_profile=Default\n"
	writeFile(t, filepath.Join(instance, "ModOrganizer.ini"), ini)

	// modlist.txt is written highest-priority-first by MO2.
	modlist := "+ModB\n+ModA\n-ModDisabled\n"
	writeFile(t, filepath.Join(instance, "profiles", "Default", "modlist.txt"), modlist)

	writeFile(t, filepath.Join(instance, "mods", "ModA", "textures", "rock_p.dds"), "a")
	writeFile(t, filepath.Join(instance, "mods", "ModB", "textures", "rock_p.dds"), "b")

	backend := &MO2Backend{Cfg: MO2Config{InstanceINIPath: filepath.Join(instance, "ModOrganizer.ini")}}
	mods, ownership, err := backend.Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(mods) != 2 {
		t.Fatalf("expected 2 enabled mods, got %d", len(mods))
	}

	var a, b *Mod
	for _, m := range mods {
		switch m.Name {
		case "ModA":
			a = m
		case "ModB":
			b = m
		}
	}
	if a == nil || b == nil {
		t.Fatalf("expected ModA and ModB present, got %+v", mods)
	}
	// modlist.txt is written highest priority first: ModB is the first
	// line, so reversing gives ModA the lower priority.
	if !(a.Priority < b.Priority) {
		t.Fatalf("expected ModA priority < ModB priority, got a=%d b=%d", a.Priority, b.Priority)
	}

	owner, ok := ownership["textures\\rock_p.dds"]
	if !ok {
		t.Fatalf("expected ownership entry for rock_p.dds")
	}
	if owner != "ModB" {
		t.Fatalf("expected the higher-priority mod ModB to win ownership, got %s", owner)
	}
}

func TestStripVortexRevision(t *testing.T) {
	cases := map[string]string{
		"Better Rocks-12345-1-0": "Better Rocks",
		// A mod name that itself contains a hyphenated number is
		// misnamed by this heuristic (spec.md §9 design note 3): the
		// strip fires on the first "-<digits>-" it finds, not just the
		// trailing revision suffix.
		"Weapons-2024-1-0": "Weapons",
		"NoRevisionSuffix": "NoRevisionSuffix",
	}
	for in, want := range cases {
		got := stripVortexRevision(in)
		if got != want {
			t.Errorf("stripVortexRevision(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNoneBackend_AnonymousModAtPriorityZero(t *testing.T) {
	b := &NoneBackend{}
	mods, ownership, err := b.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(mods) != 1 || mods[0].Priority != 0 {
		t.Fatalf("expected single anonymous mod at priority 0, got %+v", mods)
	}
	if len(ownership) != 0 {
		t.Fatalf("expected no explicit ownership entries, got %d", len(ownership))
	}
}
