package mesh

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/patch"
)

// RecordVariant is one plugin alternate-texture record's view of a mesh:
// for shapes where it overrides the mesh's own shader choice, the
// override is listed by old_index3d (spec.md §4.6 "Mesh duplication").
type RecordVariant struct {
	RecordHandle string
	Overrides    map[int]patch.ShapeShader
	Assignments  []Assignment
}

// Assignment is one plugin alt-tex-to-TXST binding the record carried
// while its shader override was recorded, forwarded so a duplicated
// mesh can be rewired onto its new path (spec.md §4.7 operation 4).
type Assignment struct {
	AltTexHandle   string
	NewTXSTHandle  string
	ModelRecHandle string
}

// DuplicateResult is one output file produced by duplication: either the
// original path (the variant matching the mesh's own vector) or a fresh
// `pg<N>` path, plus which record handles now point at it.
type DuplicateResult struct {
	Path          string
	RecordHandles []string
	Bytes         []byte
}

// shaderVector serializes the per-shape shader choice for one variant
// into a stable, comparable string so variants can be grouped (spec.md
// §4.6: "Serialize the shader vector to a stable string. Group records
// by that string.").
func shaderVector(meshShaders map[int]patch.ShapeShader, overrides map[int]patch.ShapeShader) string {
	indices := make([]int, 0, len(meshShaders))
	for i := range meshShaders {
		indices = append(indices, i)
	}
	for i := range overrides {
		if _, ok := meshShaders[i]; !ok {
			indices = append(indices, i)
		}
	}
	// Deterministic order: simple insertion sort, the index space per
	// mesh is small (shape counts rarely exceed a few hundred).
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && indices[j-1] > indices[j]; j-- {
			indices[j-1], indices[j] = indices[j], indices[j-1]
		}
	}

	var b strings.Builder
	for _, i := range indices {
		shader := meshShaders[i]
		if s, ok := overrides[i]; ok {
			shader = s
		}
		fmt.Fprintf(&b, "%d:%d;", i, shader)
	}
	return b.String()
}

// duplicatePathFor implements spec.md §6's "Duplicate-mesh path rule":
// `orig_first_dir / pg<N> / orig_rest`.
func duplicatePathFor(originalPath string, n int) string {
	originalPath = strings.ReplaceAll(originalPath, `\`, "/")
	firstDir, rest, found := strings.Cut(originalPath, "/")
	if !found {
		return path.Join(fmt.Sprintf("pg%d", n), originalPath)
	}
	return path.Join(firstDir, fmt.Sprintf("pg%d", n), rest)
}

// PatchFn re-runs spec.md §4.6 step 5 on a fresh copy of the NIF with a
// per-shape forced shader, producing the duplicate's serialized bytes.
// Mesh duplication must not recurse (spec.md §4.6): implementations must
// not themselves perform plugin integration or further duplication.
type PatchFn func(n nif.NIF, forceShader map[int]patch.ShapeShader) (nif.NIF, bool)

// Duplicate implements spec.md §4.6's "Mesh duplication" procedure.
// meshShaders is shaders_applied_mesh; variants is the per-record
// override list the plugin patcher collected for this mesh.
func Duplicate(originalPath string, original nif.NIF, meshShaders map[int]patch.ShapeShader, variants []RecordVariant, apply PatchFn) ([]DuplicateResult, error) {
	meshVector := shaderVector(meshShaders, nil)

	groups := make(map[string][]string) // vector -> record handles
	order := []string{}
	for _, v := range variants {
		vec := shaderVector(meshShaders, v.Overrides)
		if _, ok := groups[vec]; !ok {
			order = append(order, vec)
		}
		groups[vec] = append(groups[vec], v.RecordHandle)
	}

	var results []DuplicateResult
	n := 1
	for _, vec := range order {
		handles := groups[vec]
		if vec == meshVector {
			bytes, err := original.ToBytes()
			if err != nil {
				return nil, err
			}
			results = append(results, DuplicateResult{Path: originalPath, RecordHandles: handles, Bytes: bytes})
			continue
		}

		var forceShader map[int]patch.ShapeShader
		for _, v := range variants {
			if shaderVector(meshShaders, v.Overrides) == vec {
				forceShader = v.Overrides
				break
			}
		}

		patched, modified := apply(original, forceShader)
		bytes, err := patched.ToBytes()
		if err != nil {
			return nil, err
		}
		_ = modified

		dupPath := duplicatePathFor(originalPath, n)
		n++
		results = append(results, DuplicateResult{Path: dupPath, RecordHandles: handles, Bytes: bytes})
	}

	return results, nil
}

// DupTracker records which canonical paths are duplicate variants of
// which original mesh, so diagnostics and the output manager can report
// "N variants produced from mesh X" (supplemented feature grounded in
// the original implementation's mesh-duplication tracker).
type DupTracker struct {
	mu       sync.Mutex
	variants map[string][]string // original path -> duplicate paths
}

func NewDupTracker() *DupTracker {
	return &DupTracker{variants: make(map[string][]string)}
}

func (t *DupTracker) RecordVariant(originalPath, duplicatePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.variants[originalPath] = append(t.variants[originalPath], duplicatePath)
}

func (t *DupTracker) VariantsOf(originalPath string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.variants[originalPath]))
	copy(out, t.variants[originalPath])
	return out
}
