package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modpatch/pgpatcher/internal/app"
	"github.com/modpatch/pgpatcher/internal/config"
	"github.com/modpatch/pgpatcher/internal/gpu"
	"github.com/modpatch/pgpatcher/internal/moddir"
	"github.com/modpatch/pgpatcher/internal/nif"
	"github.com/modpatch/pgpatcher/internal/plugin"
)

// loadConfig runs the three-layer merge (SPEC_FULL.md ambient-stack
// "Configuration") with the CLI's own flags as the third layer.
func loadConfig(cmd *cobra.Command, opts *rootOptions, dryRun bool) (config.Config, error) {
	flags := config.Flags{
		DataDir:   opts.dataDir,
		OutputDir: opts.outputDir,
		Verbosity: opts.verbosity,
		Autostart: opts.autostart,
		DryRun:    dryRun,
	}
	if cmd.Flags().Changed("zip") {
		v := opts.zipOutput
		flags.ZipOutput = &v
	}
	return config.Load(opts.configPath, flags)
}

// modBackend constructs the internal/moddir.Backend named by
// cfg.ModManager (spec.md §4.2). Config.ModlistPath doubles as the MO2
// instance ini path or the Vortex deployment json path, since a single
// install only ever uses one of the two.
func modBackend(cfg config.Config) (moddir.Backend, error) {
	switch cfg.ModManager {
	case config.BackendMO2:
		return &moddir.MO2Backend{Cfg: moddir.MO2Config{
			InstanceINIPath: cfg.ModlistPath,
			OutputDir:       cfg.OutputDir,
		}}, nil
	case config.BackendVortex:
		return &moddir.VortexBackend{Cfg: moddir.VortexConfig{
			DeploymentPath: cfg.ModlistPath,
		}}, nil
	case config.BackendNone:
		return &moddir.NoneBackend{}, nil
	default:
		return nil, fmt.Errorf("cli: unknown mod_manager %q", cfg.ModManager)
	}
}

// buildContext wires a full app.Context from a resolved Config, the way
// spec.md §7 describes startup: construct every component, fail fast on
// the first error instead of partially starting the pipeline.
func buildContext(cfg config.Config) (*app.Context, error) {
	backend, err := modBackend(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, backend, gpu.UnwiredBackend{}, nif.MemLoader{}, plugin.UnwiredBackend{})
}
