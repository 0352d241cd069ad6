// Package gpu implements C5: a device wrapper around the opaque
// DirectX/DDS/compute-shader service named in spec.md §1. All
// dispatches are serialized under a single mutex (spec.md §4.3: "the
// compute workload is short and device thrashing from parallel dispatch
// is worse than contention").
package gpu

import (
	"sync"

	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/dds"
)

// ComputeShader is the opaque compiled-shader handle a real D3D11
// binding would return from device creation. PGPatcher never renders;
// it only dispatches these for texture analysis/derivation.
type ComputeShader struct {
	Name string
}

// Backend is implemented by the real GPU binding, per spec.md §1's
// "treated as an opaque service" boundary. cmd/pgpatcher links
// UnwiredBackend (stub.go); tests use their own fakes.
type Backend interface {
	LoadDDS(canonicalPath string) (*dds.Image, error)
	LoadDDSMetadata(canonicalPath string) (*dds.Metadata, error)
	CountChannelPopulations(img *dds.Image) ([4]uint32, error)
	ApplyShader(in *dds.Image, outFormat dds.Format, outW, outH int, shader *ComputeShader, params map[string]float32) (*dds.Image, error)
	InitShaders() (map[string]*ComputeShader, error)
}

// Device serializes every Backend call under one mutex and caches DDS
// metadata behind a read-write lock, matching spec.md §4.3 and §5's
// "DDS metadata cache" discipline.
type Device struct {
	backend Backend
	mu      sync.Mutex

	shaders map[string]*ComputeShader

	metaMu    sync.RWMutex
	metaCache map[string]*dds.Metadata
}

func NewDevice(backend Backend) *Device {
	return &Device{
		backend:   backend,
		metaCache: make(map[string]*dds.Metadata),
	}
}

// InitShaders compiles/loads every compute shader once at startup and
// retains them for the process lifetime (spec.md §4.3). Failure here is
// startup-critical (spec.md §7): the caller should exit 1.
func (d *Device) InitShaders() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	shaders, err := d.backend.InitShaders()
	if err != nil {
		return core.ErrShaderInitFailed
	}
	d.shaders = shaders
	return nil
}

func (d *Device) Shader(name string) (*ComputeShader, bool) {
	s, ok := d.shaders[name]
	return s, ok
}

// LoadDDS loads image bytes. Per-image failures degrade gracefully
// (spec.md §7 "GPU dispatch error"): callers must treat ok == false as
// "reject this texture/shape, keep going", never abort the run.
func (d *Device) LoadDDS(canonicalPath string) (*dds.Image, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := d.backend.LoadDDS(canonicalPath)
	if err != nil {
		core.LogDebug("gpu: load dds %s failed: %v", canonicalPath, err)
		return nil, false
	}
	return img, true
}

// LoadDDSMetadata is read-through cached by canonical path (spec.md §5).
func (d *Device) LoadDDSMetadata(canonicalPath string) (*dds.Metadata, bool) {
	d.metaMu.RLock()
	if m, ok := d.metaCache[canonicalPath]; ok {
		d.metaMu.RUnlock()
		return m, true
	}
	d.metaMu.RUnlock()

	d.mu.Lock()
	m, err := d.backend.LoadDDSMetadata(canonicalPath)
	d.mu.Unlock()
	if err != nil {
		core.LogDebug("gpu: load dds metadata %s failed: %v", canonicalPath, err)
		return nil, false
	}

	d.metaMu.Lock()
	d.metaCache[canonicalPath] = m
	d.metaMu.Unlock()
	return m, true
}

// CountChannelPopulations dispatches the CountAlphaValues-equivalent
// compute shader (spec.md §4.3), returning the non-zero pixel count per
// RGBA channel, used by the complex-material classifier (§4.4.1).
func (d *Device) CountChannelPopulations(img *dds.Image) ([4]uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pops, err := d.backend.CountChannelPopulations(img)
	if err != nil {
		core.LogDebug("gpu: count channel populations failed: %v", err)
		return [4]uint32{}, false
	}
	return pops, true
}

// ApplyShader generically applies a compute shader to derive a new
// image (used by shader-transform hooks, §4.7.5). Mipmap regeneration
// on the output is the backend's responsibility.
func (d *Device) ApplyShader(in *dds.Image, outFormat dds.Format, outW, outH int, shaderName string, params map[string]float32) (*dds.Image, bool) {
	shader, ok := d.Shader(shaderName)
	if !ok {
		core.LogError("gpu: shader %q not initialized", shaderName)
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := d.backend.ApplyShader(in, outFormat, outW, outH, shader, params)
	if err != nil {
		core.LogDebug("gpu: apply shader %q failed: %v", shaderName, err)
		return nil, false
	}
	return out, true
}

// AspectRatiosMatch compares two textures from metadata only (no full
// decode), per spec.md §4.3.
func (d *Device) AspectRatiosMatch(a, b string) bool {
	ma, ok := d.LoadDDSMetadata(a)
	if !ok {
		return false
	}
	mb, ok := d.LoadDDSMetadata(b)
	if !ok {
		return false
	}
	return ma.Width*mb.Height == mb.Width*ma.Height
}
