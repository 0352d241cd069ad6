package moddir

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dlclark/regexp2"
	"github.com/modpatch/pgpatcher/internal/pathutil"
)

// VortexDeployment mirrors the subset of vortex.deployment.json that
// PGPatcher reads: a flat list of deployed files with the mod that
// produced each one.
type vortexDeployment struct {
	Files []vortexFile `json:"files"`
}

type vortexFile struct {
	RelPath string `json:"relPath"`
	Source  string `json:"source"`
}

type VortexConfig struct {
	DeploymentPath string
}

type VortexBackend struct {
	Cfg VortexConfig
}

// vortexSourceStrip matches Vortex's "-<number>-<rest>" suffix that
// encodes a download's revision inside the folder name Vortex uses as
// `source`. The strip is a heuristic (spec.md §9 design note 3): it
// cuts at the leftmost "-<digits>-" in the name, so a mod whose real
// name contains a hyphenated number is misnamed ("Weapons-2024-1-0"
// becomes "Weapons").
var vortexSourceStrip = regexp2.MustCompile(`-\d+-.*$`, regexp2.None)

func stripVortexRevision(source string) string {
	m, err := vortexSourceStrip.FindStringMatch(source)
	if err != nil || m == nil {
		return source
	}
	return source[:m.Index]
}

func (b *VortexBackend) Load() ([]*Mod, map[string]string, error) {
	data, err := os.ReadFile(b.Cfg.DeploymentPath)
	if err != nil {
		return nil, nil, fmt.Errorf("vortex: read deployment: %w", err)
	}

	var dep vortexDeployment
	if err := json.Unmarshal(data, &dep); err != nil {
		return nil, nil, fmt.Errorf("vortex: parse deployment: %w", err)
	}

	ownership := make(map[string]string)
	order := make([]string, 0)
	seen := make(map[string]bool)

	for _, f := range dep.Files {
		name := stripVortexRevision(f.Source)
		if name == "" {
			continue
		}
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
		key := pathutil.Canonicalize(f.RelPath)
		if _, exists := ownership[key]; !exists {
			ownership[key] = name
		}
	}

	// Vortex has no explicit priority file in its deployment manifest;
	// PGPatcher derives a stable order from first-appearance in the
	// deployment list, which matches file-overwrite order Vortex itself
	// used when it wrote the deployment.
	mods := make([]*Mod, 0, len(order))
	for i, name := range order {
		mods = append(mods, NewMod(name, true, i))
	}

	return mods, ownership, nil
}
