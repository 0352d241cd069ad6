package texture

import (
	"strings"
	"sync"

	"github.com/modpatch/pgpatcher/internal/core"
	"github.com/modpatch/pgpatcher/internal/gpu"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/pathutil"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

// Override is a user-supplied (path, role) pin that short-circuits voting
// and the suffix table (spec.md §4.4 phase 2 step 3).
type Override struct {
	Role Type
	Slot Slot
}

// voteRecord accumulates Phase 1 evidence for one texture path (spec.md
// §4.4: "UnconfirmedTextures[path].votes[slot] += 1 ... votes_by_role").
type voteRecord struct {
	slotVotes [nif.SlotCount]int
	roleVotes map[Type]int
}

// Classifier implements C4. One instance is built per run, fed by
// concurrent Phase 1 mesh scans, then finalized sequentially in Phase 2
// (spec.md §4.4).
type Classifier struct {
	vfs       *vfs.VFS
	archives  map[string]vfs.Archive
	loader    nif.Loader
	dev       *gpu.Device
	overrides map[string]Override
	vanilla   map[string]bool

	mu          sync.Mutex
	unconfirmed map[string]*voteRecord

	buckets map[Slot]map[string]Texture
	types   map[string]Texture
}

// NewClassifier wires a Classifier against the merged file view, the NIF
// codec, the GPU device used for the complex-material test, the user's
// explicit overrides, and the set of canonical paths considered vanilla
// (spec.md §4.4's three inputs).
func NewClassifier(v *vfs.VFS, archives map[string]vfs.Archive, loader nif.Loader, dev *gpu.Device, overrides map[string]Override, vanillaPaths []string) *Classifier {
	vanilla := make(map[string]bool, len(vanillaPaths))
	for _, p := range vanillaPaths {
		vanilla[pathutil.Canonicalize(p)] = true
	}
	return &Classifier{
		vfs:         v,
		archives:    archives,
		loader:      loader,
		dev:         dev,
		overrides:   overrides,
		vanilla:     vanilla,
		unconfirmed: make(map[string]*voteRecord),
		buckets:     make(map[Slot]map[string]Texture),
		types:       make(map[string]Texture),
	}
}

// ScanNIF is Phase 1's per-mesh unit of work (spec.md §4.4 phase 1):
// safe to call concurrently across meshes. A NIF that fails to load (bad
// codec data, or a non-ASCII texture-slot string) is rejected in full and
// contributes no votes; the caller logs and moves on, never aborting the
// run.
func (c *Classifier) ScanNIF(canonicalMeshPath string) error {
	raw, err := c.vfs.ReadBytes(canonicalMeshPath, c.archives)
	if err != nil {
		return err
	}

	loaded, err := c.loader.Load(raw)
	if err != nil {
		core.LogWarn("texture classifier: rejecting %s: %v", canonicalMeshPath, err)
		return err
	}

	for _, shape := range loaded.Shapes() {
		for slotIdx := 0; slotIdx < int(nif.SlotCount); slotIdx++ {
			texPath := shape.Shader.Slots[slotIdx]
			if texPath == "" {
				continue
			}
			canon := pathutil.Canonicalize(texPath)
			role := inferRole(nif.TextureSlot(slotIdx), shape.Shader.Type, shape.Shader.Flags)

			c.mu.Lock()
			rec, ok := c.unconfirmed[canon]
			if !ok {
				rec = &voteRecord{roleVotes: make(map[Type]int)}
				c.unconfirmed[canon] = rec
			}
			rec.slotVotes[slotIdx]++
			if role != TypeUnknown {
				rec.roleVotes[role]++
			}
			c.mu.Unlock()
		}
	}
	return nil
}

// Finalize runs Phase 2 (spec.md §4.4 phase 2) sequentially over every
// texture path that accumulated votes in Phase 1. It must only be called
// after every ScanNIF call has returned.
func (c *Classifier) Finalize() {
	for canon, rec := range c.unconfirmed {
		slot, role := c.resolveSlotAndRole(canon, rec)

		if ov, ok := c.overrides[canon]; ok {
			slot, role = ov.Slot, ov.Role
		}

		if c.vanilla[canon] && role == TypeHeight {
			// Vanilla textures are never elevated to parallax sources
			// (spec.md §4.4 phase 2 step 4); they fall back to an
			// unclassified/diffuse bucket instead.
			slot, role = SlotDiffuse, TypeUnknown
		}

		var attrs Attribute
		if role == TypeEnvironmentMask && !c.vanilla[canon] && c.dev != nil {
			if res := classifyComplexMaterial(c.dev, canon); res.isCM {
				role = TypeComplexMaterial
				attrs = res.attributes
			}
		}

		c.insert(canon, slot, role, attrs)
	}
}

// resolveSlotAndRole applies phase 2 steps 1-2: highest-vote slot (ties
// broken by slot ordinal), highest-vote role, falling back to the suffix
// table when there is no role evidence at all.
func (c *Classifier) resolveSlotAndRole(canon string, rec *voteRecord) (Slot, Type) {
	bestSlot, bestSlotVotes := nif.SlotDiffuse, -1
	for i := 0; i < int(nif.SlotCount); i++ {
		if rec.slotVotes[i] > bestSlotVotes {
			bestSlotVotes = rec.slotVotes[i]
			bestSlot = nif.TextureSlot(i)
		}
	}

	if len(rec.roleVotes) == 0 {
		return classifyBySuffix(canon)
	}

	bestRole, bestRoleVotes := TypeUnknown, -1
	for role, votes := range rec.roleVotes {
		if votes > bestRoleVotes || (votes == bestRoleVotes && role < bestRole) {
			bestRoleVotes = votes
			bestRole = role
		}
	}
	return bestSlot, bestRole
}

func (c *Classifier) insert(canon string, slot Slot, role Type, attrs Attribute) {
	prefix := stripRecognizedSuffix(canon)

	bucket, ok := c.buckets[slot]
	if !ok {
		bucket = make(map[string]Texture)
		c.buckets[slot] = bucket
	}

	tex := Texture{CanonicalPath: canon, Role: role, Attributes: attrs}
	bucket[prefix] = tex
	c.types[canon] = tex
}

func stripRecognizedSuffix(canonicalPath string) string {
	stem := stemOf(canonicalPath)
	underPBR := strings.Contains(canonicalPath, pbrDir)
	for _, e := range suffixTable {
		if e.pbrOnly && !underPBR {
			continue
		}
		if strings.HasSuffix(stem, e.suffix) {
			return strings.TrimSuffix(stem, e.suffix)
		}
	}
	return stem
}

// TextureType is the reverse-direction lookup from spec.md §4.4's
// invariant: "TextureTypes[path] = (role, attributes)".
func (c *Classifier) TextureType(canonicalPath string) (Texture, bool) {
	t, ok := c.types[pathutil.Canonicalize(canonicalPath)]
	return t, ok
}

// Bucket looks up TextureMap[slot][tex_base_prefix] (spec.md §4.4 phase 2
// step 6), used by shader patchers hunting for a texture of a known role
// that shares a base name with a shape's existing diffuse/normal.
func (c *Classifier) Bucket(slot Slot, texBasePrefix string) (Texture, bool) {
	bucket, ok := c.buckets[slot]
	if !ok {
		return Texture{}, false
	}
	t, ok := bucket[texBasePrefix]
	return t, ok
}
