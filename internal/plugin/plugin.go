package plugin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/modpatch/pgpatcher/internal/mesh"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/patch"
)

// AltTexRecord is one alternate-texture entry on a TXST-bearing model
// reference (spec.md §4.7 step 3).
type AltTexRecord struct {
	Handle         string
	ModelRecHandle string
	ModelPath      string
	Index3D        int
	TXSTHandle     string
	TXSTFormID     uint32
	AltTexMod      string
	MatchType      string
}

// TXSTResult is returned per processed alternate-texture record (spec.md
// §4.7 step 3).
type TXSTResult struct {
	Shader         patch.ShapeShader
	NewTXSTHandle  string
	AltTexHandle   string
	ModelRecHandle string
	MatchedNIFPath string
}

// Backend is the opaque plugin-editing library binding (spec.md §4.7:
// "a thin service over an opaque plugin-editing library. Its contract,
// not its implementation, is what matters").
type Backend interface {
	Initialize(gameType, exePath, language string, loadOrder []string) error
	PopulateObjects() error
	FindAltTexRecords(modelPath string, index3D int) []AltTexRecord
	TXSTSlots(txstHandle string) nif.TextureSet
	CreateTXST(edid string, slots nif.TextureSet) (handle string, err error)
	SetAltTexTXST(altTexHandle, txstHandle string) error
	RewireModel(modelRecHandle, newModelPath string) error
	SetIndex3D(nifPath string, oldIndex3D, newIndex3D int, shapeName string) error
	SavePlugin(outputDir string, esmify bool) ([]string, error)
}

// Service is the mutex-serialized façade the mesh engine and output
// manager call through (spec.md §5: "Plugin library: Single mutex on
// every call").
type Service struct {
	backend Backend
	shaders []patch.ShaderPatcher
	resolve patch.ModResolver
	alloc   *FormIDAllocator

	mu sync.Mutex

	// dedupBySlots memoizes newly-created TXST handles by their slot
	// tuple so two shapes that land on the same new texture set reuse
	// one record (spec.md §4.7 step 3: "Deduplicate... reuse that
	// newly-created TXST").
	dedupBySlots map[nif.TextureSet]string

	// variantsByMesh accumulates RecordVariant data per mesh so the mesh
	// engine's duplication pass can consult it after ProcessShape has
	// run for every shape.
	variantsByMesh map[string]map[string]*pendingVariant
}

// pendingVariant accumulates one plugin record's shader overrides and
// TXST assignments across a mesh's shapes until Variants(meshPath)
// hands the finished internal/mesh.RecordVariant to the duplication
// pass.
type pendingVariant struct {
	handle      string
	overrides   map[int]patch.ShapeShader
	assignments []mesh.Assignment
}

func NewService(backend Backend, shaders []patch.ShaderPatcher, resolve patch.ModResolver, alloc *FormIDAllocator) *Service {
	return &Service{
		backend:        backend,
		shaders:        shaders,
		resolve:        resolve,
		alloc:          alloc,
		dedupBySlots:   make(map[nif.TextureSet]string),
		variantsByMesh: make(map[string]map[string]*pendingVariant),
	}
}

// Initialize implements spec.md §4.7 operation 1.
func (s *Service) Initialize(gameType, exePath, language string, loadOrder []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Initialize(gameType, exePath, language, loadOrder)
}

// PopulateObjects implements spec.md §4.7 operation 2.
func (s *Service) PopulateObjects() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.PopulateObjects()
}

// ProcessShape implements spec.md §4.7 operation 3 and satisfies
// internal/mesh.PluginPort.
func (s *Service) ProcessShape(nifPath string, oldIndex3D int, canApply patch.CanApplyMap, dryRun bool) error {
	s.mu.Lock()
	records := s.backend.FindAltTexRecords(nifPath, oldIndex3D)
	s.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		if err := s.processOneRecord(nifPath, oldIndex3D, rec, canApply, dryRun); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) processOneRecord(nifPath string, oldIndex3D int, rec AltTexRecord, canApply patch.CanApplyMap, dryRun bool) error {
	s.mu.Lock()
	slots := s.backend.TXSTSlots(rec.TXSTHandle)
	s.mu.Unlock()

	// Normalize any leading textures\pbr\ prefix to textures\ (spec.md
	// §4.7 step 3).
	for i, p := range slots {
		slots[i] = strings.Replace(p, `textures\pbr\`, `textures\`, 1)
	}

	winner, ok := patch.SelectWinner(s.shaders, canApply, slots, s.resolve)
	if !ok {
		return nil
	}

	newSlots := winner.Patcher.ApplySlots(slots, winner.Match)
	if newSlots == slots {
		return nil
	}

	if dryRun {
		s.recordVariant(nifPath, rec, winner.Match.Shader, oldIndex3D, "")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txstHandle, ok := s.dedupBySlots[newSlots]
	if !ok {
		cacheKey := CacheKey(rec.AltTexMod, rec.TXSTFormID, rec.MatchType, oldIndex3D)
		formID, err := s.alloc.Acquire(cacheKey)
		if err != nil {
			return err
		}
		stem := stemOf(nifPath)
		edid := EDID(stem, formID)
		handle, err := s.backend.CreateTXST(edid, newSlots)
		if err != nil {
			return fmt.Errorf("plugin: create TXST %s: %w", edid, err)
		}
		txstHandle = handle
		s.dedupBySlots[newSlots] = handle
	}

	if err := s.backend.SetAltTexTXST(rec.Handle, txstHandle); err != nil {
		return err
	}

	s.recordVariantLocked(nifPath, rec, winner.Match.Shader, oldIndex3D, txstHandle)
	return nil
}

func (s *Service) recordVariant(nifPath string, rec AltTexRecord, shader patch.ShapeShader, oldIndex3D int, newTXSTHandle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordVariantLocked(nifPath, rec, shader, oldIndex3D, newTXSTHandle)
}

func (s *Service) recordVariantLocked(nifPath string, rec AltTexRecord, shader patch.ShapeShader, oldIndex3D int, newTXSTHandle string) {
	byRecord, ok := s.variantsByMesh[nifPath]
	if !ok {
		byRecord = make(map[string]*pendingVariant)
		s.variantsByMesh[nifPath] = byRecord
	}
	v, ok := byRecord[rec.ModelRecHandle]
	if !ok {
		v = &pendingVariant{handle: rec.ModelRecHandle, overrides: make(map[int]patch.ShapeShader)}
		byRecord[rec.ModelRecHandle] = v
	}
	v.overrides[oldIndex3D] = shader
	if newTXSTHandle != "" {
		v.assignments = append(v.assignments, mesh.Assignment{
			AltTexHandle:   rec.Handle,
			NewTXSTHandle:  newTXSTHandle,
			ModelRecHandle: rec.ModelRecHandle,
		})
	}
}

// Variants returns the accumulated per-record shader overrides and TXST
// assignments for a mesh, the shape internal/mesh.Duplicate and the
// duplication wiring in internal/app consume.
func (s *Service) Variants(nifPath string) []mesh.RecordVariant {
	s.mu.Lock()
	defer s.mu.Unlock()
	byRecord := s.variantsByMesh[nifPath]
	out := make([]mesh.RecordVariant, 0, len(byRecord))
	for _, v := range byRecord {
		out = append(out, mesh.RecordVariant{
			RecordHandle: v.handle,
			Overrides:    v.overrides,
			Assignments:  v.assignments,
		})
	}
	return out
}

// AssignMesh implements spec.md §4.7 operation 4.
func (s *Service) AssignMesh(writtenNIFPath, originalNIFPath string, results []TXSTResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		if err := s.backend.SetAltTexTXST(r.AltTexHandle, r.NewTXSTHandle); err != nil {
			return err
		}
		if writtenNIFPath != originalNIFPath {
			if err := s.backend.RewireModel(r.ModelRecHandle, writtenNIFPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetIndex3D implements spec.md §4.7 operation 5.
func (s *Service) SetIndex3D(nifPath string, oldIndex3D, newIndex3D int, shapeName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.SetIndex3D(nifPath, oldIndex3D, newIndex3D, shapeName)
}

// SavePlugin implements spec.md §4.7 operation 6.
func (s *Service) SavePlugin(outputDir string, esmify bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.SavePlugin(outputDir, esmify)
}

func stemOf(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.LastIndex(p, "."); i >= 0 {
		p = p[:i]
	}
	return p
}
