// Package app wires every component into the single shared value
// spec.md §9 asks for in place of the original's pervasive globals
// (PGD, PGD3D, MMD, caches, warning trackers): one Context constructed
// at startup and passed by reference into every task, with interior
// mutability confined to the explicit concurrent containers each
// component already owns (vfs's RWMutex maps, the form-ID allocator's
// mutex, diagnostics.Warnings' mutex, and so on).
package app

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/modpatch/pgpatcher/internal/config"
	"github.com/modpatch/pgpatcher/internal/diagnostics"
	"github.com/modpatch/pgpatcher/internal/gpu"
	"github.com/modpatch/pgpatcher/internal/jobs"
	"github.com/modpatch/pgpatcher/internal/lock"
	"github.com/modpatch/pgpatcher/internal/mesh"
	"github.com/modpatch/pgpatcher/internal/moddir"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/output"
	"github.com/modpatch/pgpatcher/internal/patch"
	"github.com/modpatch/pgpatcher/internal/plugin"
	"github.com/modpatch/pgpatcher/internal/texture"
	"github.com/modpatch/pgpatcher/internal/vfs"
)

// Context is the one shared value threaded through a run (spec.md §9
// design note). Every field already does its own locking internally, so
// Context itself needs none.
type Context struct {
	Cfg config.Config

	VFS       *vfs.VFS
	Archives  map[string]vfs.Archive
	ModDir    *moddir.Directory
	GPU       *gpu.Device
	NIFLoader nif.Loader
	Classifier *texture.Classifier
	Registry  *patch.Registry
	Engine    *mesh.Engine
	Plugin    *plugin.Service
	Output    *output.Manager
	Pool      *jobs.Pool

	Warnings *diagnostics.Warnings
	Trace    *diagnostics.Trace
	NIFCache *diagnostics.FileCache
	TexCache *diagnostics.FileCache
	FormIDs  *plugin.FormIDAllocator
	Diff     *mesh.DiffTracker
	Dups     *mesh.DupTracker

	cacheLock  *lock.InstanceLock
	outputLock *lock.InstanceLock
}

// New builds a Context from a resolved configuration. It does not run
// the pipeline; call Run for that.
func New(cfg config.Config, modBackend moddir.Backend, gpuBackend gpu.Backend, nifLoader nif.Loader, pluginBackend plugin.Backend) (*Context, error) {
	cacheLk, err := lock.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	if ok, err := cacheLk.TryLock(); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("app: another pgpatcher instance holds the cache lock in %s", cfg.CacheDir)
	}

	outLk, err := lock.New(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	if ok, err := outLk.TryLock(); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("app: another pgpatcher instance holds the output lock in %s", cfg.OutputDir)
	}

	dir, err := moddir.Load(modBackend, cfg.UseMMOrder)
	if err != nil {
		return nil, fmt.Errorf("app: mod directory: %w", err)
	}

	dev := gpu.NewDevice(gpuBackend)
	if err := dev.InitShaders(); err != nil {
		return nil, fmt.Errorf("app: gpu init: %w", err)
	}

	nifCache, err := diagnostics.LoadFileCache(filepath.Join(cfg.CacheDir, "nifCache.json"))
	if err != nil {
		return nil, fmt.Errorf("app: nif cache: %w", err)
	}
	texCache, err := diagnostics.LoadFileCache(filepath.Join(cfg.CacheDir, "texCache.json"))
	if err != nil {
		return nil, fmt.Errorf("app: tex cache: %w", err)
	}
	formIDs, err := plugin.LoadFormIDCache(filepath.Join(cfg.CacheDir, "txstFormIDs.json"))
	if err != nil {
		return nil, fmt.Errorf("app: form-id cache: %w", err)
	}

	v := vfs.New()
	archives := make(map[string]vfs.Archive)

	overrides := make(map[string]texture.Override)
	for canon, roleName := range cfg.TextureRoleOverrides {
		overrides[canon] = texture.Override{Role: texture.ParseType(roleName)}
	}

	classifier := texture.NewClassifier(v, archives, nifLoader, dev, overrides, cfg.VanillaArchives)

	registry := buildRegistry(classifier, dev, v, cfg)

	alloc := plugin.NewFormIDAllocator(formIDs)

	resolve := modResolver(dir)

	pluginSvc := plugin.NewService(pluginBackend, registry.BuildShaders("", nil), resolve, alloc)

	diff := mesh.NewDiffTracker()
	engine := mesh.NewEngine(registry, resolve, nifLoader, diff, pluginSvc)

	return &Context{
		Cfg:        cfg,
		VFS:        v,
		Archives:   archives,
		ModDir:     dir,
		GPU:        dev,
		NIFLoader:  nifLoader,
		Classifier: classifier,
		Registry:   registry,
		Engine:     engine,
		Plugin:     pluginSvc,
		Output:     output.NewManager(cfg.OutputDir),
		Pool:       jobs.NewPool(jobs.DefaultWorkers(), 256),
		Warnings:   diagnostics.NewWarnings(),
		Trace:      diagnostics.NewTrace(cfg.DiagnosticsJSON),
		NIFCache:   nifCache,
		TexCache:   texCache,
		FormIDs:    alloc,
		Diff:       diff,
		Dups:       mesh.NewDupTracker(),
		cacheLock:  cacheLk,
		outputLock: outLk,
	}, nil
}

// Close releases the instance locks. Call once the run (dry or real)
// finishes.
func (c *Context) Close() {
	c.cacheLock.Unlock()
	c.outputLock.Unlock()
}

// buildRegistry registers the shader patchers named in cfg.EnabledShaders
// (SPEC_FULL.md's config supplement). An empty list enables all of them,
// so a config file that never sets the key still gets full behavior.
func buildRegistry(classifier *texture.Classifier, dev *gpu.Device, v *vfs.VFS, cfg config.Config) *patch.Registry {
	enabled := func(name string) bool {
		if len(cfg.EnabledShaders) == 0 {
			return true
		}
		for _, e := range cfg.EnabledShaders {
			if e == name {
				return true
			}
		}
		return false
	}

	r := patch.NewRegistry()
	if enabled("vanillaparallax") {
		r.RegisterShader(patch.NewVanillaParallaxPatcher(classifier))
	}
	if enabled("complexmaterial") {
		r.RegisterShader(patch.NewComplexMaterialPatcher(classifier))
	}
	if enabled("truepbr") {
		r.RegisterShader(patch.NewTruePBRPatcher(classifier))
	}
	// The default patcher always runs last so every shape has a fallback
	// match to compare its None contribution against (spec.md §4.5 step 3).
	r.RegisterShader(patch.NewDefaultShaderPatcher(classifier))

	hook := patch.NewTextureHook(dev, v, "textures/generated", func(src string) string {
		return path.Join("textures", "generated", path.Base(src))
	})
	r.RegisterTransform(patch.NewParallaxToComplexMaterialTransform(hook))
	return r
}

// modResolver adapts internal/moddir's ownership map into the
// patch.ModResolver function shape.
func modResolver(dir *moddir.Directory) patch.ModResolver {
	return func(canonicalPath string) *moddir.Mod {
		m, ok := dir.ModForPath(canonicalPath)
		if !ok {
			return nil
		}
		return m
	}
}
