package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modpatch/pgpatcher/internal/diagnostics"
	"github.com/modpatch/pgpatcher/internal/jobs"
	"github.com/modpatch/pgpatcher/internal/mesh"
	"github.com/modpatch/pgpatcher/internal/output"
	"github.com/modpatch/pgpatcher/internal/patch"
	"github.com/modpatch/pgpatcher/internal/plugin"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

// Run executes the full pipeline (spec.md §2 "Control flow"): discover
// the VFS, classify every texture, patch every mesh, save the plugin,
// and write the output manifests. When dryRun is true this stops after
// mesh-patch decisions are gathered — the mod-conflict dry-run report of
// spec.md §4.8 — without writing any file or persisting any cache (P7).
func (c *Context) Run(ctx context.Context, looseRoot string, includeArchives bool, dryRun bool) error {
	if err := c.VFS.Populate(looseRoot, includeArchives, archiveSlice(c.Archives)); err != nil {
		return fmt.Errorf("app: populate vfs: %w", err)
	}

	meshPaths := meshPathsOf(c.VFS.Keys())

	if err := c.classifyAll(ctx, meshPaths); err != nil {
		return err
	}
	c.Classifier.Finalize()

	results, err := c.patchAll(ctx, meshPaths, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		return nil
	}

	for canonicalPath, res := range results {
		if res.Written {
			if err := c.Output.WriteFile(canonicalPath, res.Bytes); err != nil {
				return err
			}
		}
		if err := c.duplicateAndRewire(canonicalPath, res); err != nil {
			return err
		}
	}

	if _, err := c.Plugin.SavePlugin(c.Cfg.OutputDir, c.Cfg.Esmify); err != nil {
		return fmt.Errorf("app: save plugin: %w", err)
	}

	if err := c.Output.WriteDiff(c.Diff); err != nil {
		return fmt.Errorf("app: write diff: %w", err)
	}

	if err := c.Trace.Write(filepath.Join(c.Cfg.OutputDir, "ParallaxGen_DIAG.json")); err != nil {
		return fmt.Errorf("app: write diagnostics trace: %w", err)
	}

	if c.Cfg.ZipOutput {
		zipPath := filepath.Join(filepath.Dir(c.Cfg.OutputDir), "PGPatcher_Output.zip")
		if err := output.WriteZip(c.Cfg.OutputDir, zipPath); err != nil {
			return fmt.Errorf("app: zip output: %w", err)
		}
	}

	return c.saveCaches()
}

// classifyAll runs Phase 1 of the texture classifier across every mesh
// concurrently (spec.md §5: "texture-mapping scan" is one of the two
// phases C11 parallelizes).
func (c *Context) classifyAll(ctx context.Context, meshPaths []string) error {
	tasks := make([]jobs.Task, len(meshPaths))
	for i, p := range meshPaths {
		p := p
		tasks[i] = func(_ context.Context) error {
			if err := c.Classifier.ScanNIF(p); err != nil {
				c.Warnings.MeshFailure(p, err)
			}
			return nil
		}
	}
	return c.Pool.Run(ctx, tasks)
}

type patchOutcome struct {
	Written        bool
	Bytes          []byte
	Raw            []byte
	ShadersApplied map[int]patch.ShapeShader
}

// duplicateAndRewire implements spec.md §4.6's mesh-duplication pass and
// §4.7 operation 4's model-rewire: it asks the plugin patcher what
// per-record shader overrides it collected while res.Bytes (or the
// mesh's unwritten original) was processed, re-runs the shader
// framework on a fresh copy of the mesh per distinct override group,
// and rewires each variant's plugin records onto its duplicate's path.
func (c *Context) duplicateAndRewire(canonicalPath string, res patchOutcome) error {
	variants := c.Plugin.Variants(canonicalPath)
	if len(variants) == 0 {
		return nil
	}

	dups, err := c.Engine.DuplicateMesh(canonicalPath, res.Raw, res.ShadersApplied, variants)
	if err != nil {
		return fmt.Errorf("app: duplicate mesh %s: %w", canonicalPath, err)
	}

	assignmentsByHandle := make(map[string][]mesh.Assignment, len(variants))
	for _, v := range variants {
		assignmentsByHandle[v.RecordHandle] = v.Assignments
	}

	for _, dup := range dups {
		if dup.Path != canonicalPath {
			if err := c.Output.WriteFile(dup.Path, dup.Bytes); err != nil {
				return err
			}
			c.Dups.RecordVariant(canonicalPath, dup.Path)
		}

		var txstResults []plugin.TXSTResult
		for _, handle := range dup.RecordHandles {
			for _, a := range assignmentsByHandle[handle] {
				txstResults = append(txstResults, plugin.TXSTResult{
					NewTXSTHandle:  a.NewTXSTHandle,
					AltTexHandle:   a.AltTexHandle,
					ModelRecHandle: a.ModelRecHandle,
					MatchedNIFPath: dup.Path,
				})
			}
		}
		if len(txstResults) > 0 {
			if err := c.Plugin.AssignMesh(dup.Path, canonicalPath, txstResults); err != nil {
				return err
			}
		}

		dupNIF, err := c.NIFLoader.Load(dup.Bytes)
		if err != nil {
			continue
		}
		for _, shape := range dupNIF.Shapes() {
			if err := c.Plugin.SetIndex3D(dup.Path, shape.OldIndex3D, shape.NewIndex3D, shape.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// patchAll runs the mesh-patch phase across every mesh concurrently
// (spec.md §5's second C11-parallelized phase).
func (c *Context) patchAll(ctx context.Context, meshPaths []string, dryRun bool) (map[string]patchOutcome, error) {
	results := make(map[string]patchOutcome, len(meshPaths))
	var mu sync.Mutex

	tasks := make([]jobs.Task, len(meshPaths))
	for i, p := range meshPaths {
		p := p
		tasks[i] = func(_ context.Context) error {
			raw, err := c.VFS.ReadBytes(p, c.Archives)
			if err != nil {
				c.Warnings.MeshFailure(p, err)
				return nil
			}

			if c.cacheHit(p) {
				c.Trace.Record([]string{p}, "cache hit, skipped")
				return nil
			}

			res, err := c.Engine.PatchMesh(p, raw, c.VFS, dryRun)
			if err != nil {
				c.Warnings.MeshFailure(p, err)
				return nil
			}

			outcome := patchOutcome{Written: res.Written, Bytes: res.Bytes, ShadersApplied: res.ShadersApplied}
			if !dryRun {
				outcome.Raw = raw
			}
			mu.Lock()
			results[p] = outcome
			mu.Unlock()

			if !dryRun {
				if mtime, err := c.VFS.Mtime(p); err == nil {
					c.NIFCache.Put(p, c.Cfg.PGVersion, uint64(mtime))
				}
			}
			return nil
		}
	}

	if err := c.Pool.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return results, nil
}

// cacheHit reports whether p's nifCache.json entry is still valid
// (spec.md §8 S5 "cache hit short-circuits").
func (c *Context) cacheHit(p string) bool {
	mtime, err := c.VFS.Mtime(p)
	if err != nil {
		return false
	}
	return c.NIFCache.Valid(p, c.Cfg.PGVersion, uint64(mtime))
}

func (c *Context) saveCaches() error {
	if err := diagnostics.SaveFileCache(filepath.Join(c.Cfg.CacheDir, "nifCache.json"), c.NIFCache); err != nil {
		return err
	}
	if err := diagnostics.SaveFileCache(filepath.Join(c.Cfg.CacheDir, "texCache.json"), c.TexCache); err != nil {
		return err
	}
	if err := plugin.SaveFormIDCache(filepath.Join(c.Cfg.CacheDir, "txstFormIDs.json"), c.FormIDs.Snapshot()); err != nil {
		return err
	}
	return nil
}

func meshPathsOf(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasSuffix(k, ".nif") {
			out = append(out, k)
		}
	}
	return out
}

func archiveSlice(archives map[string]vfs.Archive) []vfs.Archive {
	out := make([]vfs.Archive, 0, len(archives))
	for _, a := range archives {
		out = append(out, a)
	}
	return out
}
