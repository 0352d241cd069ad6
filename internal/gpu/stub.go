package gpu

import (
	"fmt"

	"github.com/modpatch/pgpatcher/internal/dds"
)

// UnwiredBackend is the Backend that cmd/pgpatcher links by default. It
// stands in for the real D3D11/compute-shader binding spec.md §1 treats
// as opaque: PGPatcher never renders and has no business owning a GPU
// driver dependency itself, so the production binding is left to
// whatever host embeds this module. Every per-texture call fails loudly
// rather than silently no-opping, so a run that actually needs GPU
// dispatch degrades each affected texture instead of producing wrong
// output. InitShaders itself succeeds with an empty shader set: an
// install whose mod list never exercises GPU-derived textures (no
// height-to-complex-material upgrades) should still patch everything
// else it can.
type UnwiredBackend struct{}

func (UnwiredBackend) LoadDDS(canonicalPath string) (*dds.Image, error) {
	return nil, fmt.Errorf("gpu: no backend wired for LoadDDS(%s)", canonicalPath)
}

func (UnwiredBackend) LoadDDSMetadata(canonicalPath string) (*dds.Metadata, error) {
	return nil, fmt.Errorf("gpu: no backend wired for LoadDDSMetadata(%s)", canonicalPath)
}

func (UnwiredBackend) CountChannelPopulations(img *dds.Image) ([4]uint32, error) {
	return [4]uint32{}, fmt.Errorf("gpu: no backend wired for CountChannelPopulations")
}

func (UnwiredBackend) ApplyShader(in *dds.Image, outFormat dds.Format, outW, outH int, shader *ComputeShader, params map[string]float32) (*dds.Image, error) {
	return nil, fmt.Errorf("gpu: no backend wired for ApplyShader")
}

func (UnwiredBackend) InitShaders() (map[string]*ComputeShader, error) {
	return map[string]*ComputeShader{}, nil
}
