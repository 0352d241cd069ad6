// Package output implements C10: writes the patched tree, writes the
// diff manifest from the pre/post CRC32 pairs the mesh engine recorded,
// and optionally zips the result (spec.md §6 "Output layout").
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modpatch/pgpatcher/internal/mesh"
)

// Manager writes every patched file produced by a run into the output
// tree and emits the accompanying manifests.
type Manager struct {
	rootDir string
}

func NewManager(rootDir string) *Manager {
	return &Manager{rootDir: rootDir}
}

// WriteFile writes one patched artifact (a mesh or a derived texture)
// to its canonical position under the output tree.
func (m *Manager) WriteFile(canonicalPath string, data []byte) error {
	full := filepath.Join(m.rootDir, filepath.FromSlash(canonicalPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("output: write %s: %w", canonicalPath, err)
	}
	return nil
}

// CopyStaticAsset copies a file from the install assets that the output
// always carries verbatim (spec.md §6:
// "textures/cubemaps/dynamic1pxcubemap_black.dds always copied from the
// install assets").
func (m *Manager) CopyStaticAsset(srcAbsPath, canonicalDestPath string) error {
	data, err := os.ReadFile(srcAbsPath)
	if err != nil {
		return fmt.Errorf("output: read static asset %s: %w", srcAbsPath, err)
	}
	return m.WriteFile(canonicalDestPath, data)
}

// diffEntryJSON is one value of ParallaxGen_Diff.json (spec.md §6):
// `{canonical_mesh_path: {crc32original, crc32patched}}`.
type diffEntryJSON struct {
	CRC32Original uint32 `json:"crc32original"`
	CRC32Patched  uint32 `json:"crc32patched"`
}

// WriteDiff serializes the diff tracker's entries to
// ParallaxGen_Diff.json.
func (m *Manager) WriteDiff(diff *mesh.DiffTracker) error {
	doc := make(map[string]diffEntryJSON)
	for path, e := range diff.Entries() {
		doc[path] = diffEntryJSON{CRC32Original: e.CRC32Original, CRC32Patched: e.CRC32Patched}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("output: marshal diff: %w", err)
	}
	return os.WriteFile(filepath.Join(m.rootDir, "ParallaxGen_Diff.json"), b, 0o644)
}
