package patch

import "github.com/modpatch/pgpatcher/internal/nif"

// PreMeshFactory, ShaderFactory, PostMeshFactory, and GlobalMeshFactory
// build one fresh patcher instance per mesh (spec.md §4.5: "one fresh
// patcher instance is created per mesh per category entry and discarded
// when the mesh is done. Factories are registered once at startup").
type PreMeshFactory func(canonicalNIFPath string, n nif.NIF) PreMesh
type ShaderFactory func(canonicalNIFPath string, n nif.NIF) ShaderPatcher
type PostMeshFactory func(canonicalNIFPath string, n nif.NIF) PostMesh
type GlobalMeshFactory func(canonicalNIFPath string, n nif.NIF) GlobalMesh

// Registry holds every factory registered at startup, in registration
// order — match-selection ties are broken by "iteration order of the
// patcher registry (stable)" (spec.md §4.5).
type Registry struct {
	preMesh    []PreMeshFactory
	shaders    []ShaderFactory
	transforms map[ShapeShader]ShaderTransform
	postMesh   []PostMeshFactory
	globalMesh []GlobalMeshFactory
}

func NewRegistry() *Registry {
	return &Registry{transforms: make(map[ShapeShader]ShaderTransform)}
}

func (r *Registry) RegisterPreMesh(f PreMeshFactory)       { r.preMesh = append(r.preMesh, f) }
func (r *Registry) RegisterShader(f ShaderFactory)         { r.shaders = append(r.shaders, f) }
func (r *Registry) RegisterPostMesh(f PostMeshFactory)     { r.postMesh = append(r.postMesh, f) }
func (r *Registry) RegisterGlobalMesh(f GlobalMeshFactory) { r.globalMesh = append(r.globalMesh, f) }

// RegisterTransform installs the transform fired when t.From() wins
// selection (spec.md §4.5 "at most one transform per source shader").
func (r *Registry) RegisterTransform(t ShaderTransform) {
	r.transforms[t.From()] = t
}

func (r *Registry) Transform(from ShapeShader) (ShaderTransform, bool) {
	t, ok := r.transforms[from]
	return t, ok
}

// BuildPreMesh, BuildShaders, BuildPostMesh, and BuildGlobalMesh invoke
// every registered factory for one mesh (spec.md §4.5).
func (r *Registry) BuildPreMesh(path string, n nif.NIF) []PreMesh {
	out := make([]PreMesh, 0, len(r.preMesh))
	for _, f := range r.preMesh {
		out = append(out, f(path, n))
	}
	return out
}

func (r *Registry) BuildShaders(path string, n nif.NIF) []ShaderPatcher {
	out := make([]ShaderPatcher, 0, len(r.shaders))
	for _, f := range r.shaders {
		out = append(out, f(path, n))
	}
	return out
}

func (r *Registry) BuildPostMesh(path string, n nif.NIF) []PostMesh {
	out := make([]PostMesh, 0, len(r.postMesh))
	for _, f := range r.postMesh {
		out = append(out, f(path, n))
	}
	return out
}

func (r *Registry) BuildGlobalMesh(path string, n nif.NIF) []GlobalMesh {
	out := make([]GlobalMesh, 0, len(r.globalMesh))
	for _, f := range r.globalMesh {
		out = append(out, f(path, n))
	}
	return out
}
