package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/modpatch/pgpatcher/internal/dds"
	"github.com/modpatch/pgpatcher/internal/gpu"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

// TextureHook schedules derived-texture generation for shader transforms
// (spec.md §4.5 "Transform gate", referenced as "texture-hook patcher,
// §4.7.5"). It deduplicates identical derivation requests so two shapes
// that would otherwise both derive the same output only dispatch the GPU
// once (spec.md §5: "deduplication of derived artifacts").
//
// The real DDS encoder lives behind the opaque GPU/codec boundary
// (spec.md §1); this hook writes the decoded scratch pixels straight to
// the generated file's absolute path so the VFS and the output manager
// have something real to read back, rather than re-implementing a DDS
// container writer here.
type TextureHook struct {
	dev    *gpu.Device
	v      *vfs.VFS
	genDir string

	mu      sync.Mutex
	derived map[string]string // dedup key -> derived canonical path
	nextGen func(sourcePath string) string
}

// NewTextureHook wires a hook against the GPU device and the VFS that
// derived files get registered into. genDir is the scratch directory
// derived files are materialized under. genPath computes the canonical
// output path for a derivation request from its source texture path.
func NewTextureHook(dev *gpu.Device, v *vfs.VFS, genDir string, genPath func(sourcePath string) string) *TextureHook {
	return &TextureHook{
		dev:     dev,
		v:       v,
		genDir:  genDir,
		derived: make(map[string]string),
		nextGen: genPath,
	}
}

// Derive runs a compute shader over sourcePath and registers the result
// as a generated VFS entry, returning its canonical path. Calling Derive
// twice with the same (sourcePath, shaderName) pair returns the same
// path without a second GPU dispatch.
func (h *TextureHook) Derive(sourcePath, shaderName string, outFormat dds.Format, outW, outH int, params map[string]float32) (string, error) {
	key := fmt.Sprintf("%s|%s", sourcePath, shaderName)

	// mu is held for the whole derivation so concurrent callers with the
	// same key wait for the first one instead of dispatching again.
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.derived[key]; ok {
		return existing, nil
	}

	in, ok := h.dev.LoadDDS(sourcePath)
	if !ok {
		return "", fmt.Errorf("texture hook: load %s failed", sourcePath)
	}
	if outW == 0 {
		outW = in.Width
	}
	if outH == 0 {
		outH = in.Height
	}
	out, ok := h.dev.ApplyShader(in, outFormat, outW, outH, shaderName, params)
	if !ok {
		return "", fmt.Errorf("texture hook: apply shader %s to %s failed", shaderName, sourcePath)
	}

	derivedPath := h.nextGen(sourcePath)
	absPath := filepath.Join(h.genDir, filepath.FromSlash(derivedPath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("texture hook: %w", err)
	}
	if err := os.WriteFile(absPath, out.Pixels, 0o644); err != nil {
		return "", fmt.Errorf("texture hook: %w", err)
	}

	if err := h.v.AddGenerated(derivedPath, absPath, ""); err != nil {
		return "", err
	}

	h.derived[key] = derivedPath

	return derivedPath, nil
}
