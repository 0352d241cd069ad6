// Package config implements the layered configuration described in
// SPEC_FULL.md's AMBIENT STACK: a shipped default merged with an
// optional on-disk pgpatcher.toml, then CLI flag overrides, reproducing
// the original source's ParallaxGenConfig three-layer merge
// (Default → MergeTOML(userPath) → ApplyFlags(flags)).
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ModManagerBackend selects which internal/moddir loader to construct.
type ModManagerBackend string

const (
	BackendNone   ModManagerBackend = "none"
	BackendMO2    ModManagerBackend = "mo2"
	BackendVortex ModManagerBackend = "vortex"
)

// Config is the full on-disk/CLI-overridable configuration surface
// (spec.md §6, §4.1-§4.8; SPEC_FULL.md ambient-stack "Configuration").
type Config struct {
	DataDir       string            `toml:"data_dir"`
	OutputDir     string            `toml:"output_dir"`
	CacheDir      string            `toml:"cache_dir"`
	ModManager    ModManagerBackend `toml:"mod_manager"`
	ModlistPath   string            `toml:"modlist_path"`
	UseMMOrder    bool              `toml:"use_mod_manager_order"`
	LoadOrderFile string            `toml:"load_order_file"`

	VanillaArchives []string `toml:"vanilla_archives"`

	// TextureRoleOverrides maps a canonical texture path to a forced
	// role name, consumed by internal/texture.Classifier's Override map
	// (spec.md §4.4 phase 2, "per-user overrides").
	TextureRoleOverrides map[string]string `toml:"texture_role_overrides"`

	EnabledShaders []string `toml:"enabled_shaders"`

	GPUDeviceIndex int  `toml:"gpu_device_index"`
	HighMemory     bool `toml:"high_memory"`

	ZipOutput       bool `toml:"zip_output"`
	DiagnosticsJSON bool `toml:"diagnostics_json"`
	Esmify          bool `toml:"esmify"`

	PGVersion string `toml:"pg_version"`
}

// Default returns the shipped baseline, the first layer of the merge.
func Default() Config {
	return Config{
		CacheDir:        "cache",
		ModManager:      BackendNone,
		UseMMOrder:      true,
		LoadOrderFile:   "loadorder.txt",
		VanillaArchives: []string{"Skyrim - Textures0.bsa", "Skyrim - Textures1.bsa"},
		EnabledShaders:  []string{"vanillaparallax", "complexmaterial", "truepbr"},
		GPUDeviceIndex:  0,
		PGVersion:       "dev",
	}
}

// MergeTOML applies the second layer: an on-disk pgpatcher.toml, when
// present. A missing file is not an error — an install with no config
// file runs on defaults alone.
func MergeTOML(base Config, userPath string) (Config, error) {
	b, err := os.ReadFile(userPath)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", userPath, err)
	}
	if err := toml.Unmarshal(b, &base); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", userPath, err)
	}
	return base, nil
}

// Flags is the subset of CLI flags (§6) allowed to override config
// values, the third layer of the merge.
type Flags struct {
	DataDir    string
	OutputDir  string
	Verbosity  int
	Autostart  bool
	ZipOutput  *bool
	DryRun     bool
}

// ApplyFlags applies the third and final merge layer. Only flags the
// caller actually set (non-empty strings, non-nil bools) override the
// prior layers, so an unset flag never clobbers a config-file value.
func ApplyFlags(base Config, f Flags) Config {
	if f.DataDir != "" {
		base.DataDir = f.DataDir
	}
	if f.OutputDir != "" {
		base.OutputDir = f.OutputDir
	}
	if f.ZipOutput != nil {
		base.ZipOutput = *f.ZipOutput
	}
	return base
}

// Validate runs the configuration-error checks (spec.md §7) that fail
// fast, before any work starts: data_dir and output_dir must be set and
// differ, and mod_manager must name a known backend. It does not check
// a game type or the existence of any file.
func Validate(c Config) error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: output_dir is required")
	}
	if c.DataDir == c.OutputDir {
		return fmt.Errorf("config: output_dir must differ from data_dir")
	}
	switch c.ModManager {
	case BackendNone, BackendMO2, BackendVortex:
	default:
		return fmt.Errorf("config: unknown mod_manager %q", c.ModManager)
	}
	return nil
}

// Load runs the full three-layer merge: Default → MergeTOML(userPath)
// → ApplyFlags(flags), then validates the result.
func Load(userPath string, flags Flags) (Config, error) {
	c := Default()
	c, err := MergeTOML(c, userPath)
	if err != nil {
		return Config{}, err
	}
	c = ApplyFlags(c, flags)
	if err := Validate(c); err != nil {
		return Config{}, err
	}
	return c, nil
}
