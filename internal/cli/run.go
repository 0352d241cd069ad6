package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modpatch/pgpatcher/internal/core"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Patch every mesh and alt-texture record and write the output tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts, false)
		},
	}
	return cmd
}

func runPipeline(cmd *cobra.Command, opts *rootOptions, dryRun bool) error {
	cfg, err := loadConfig(cmd, opts, dryRun)
	if err != nil {
		return fmt.Errorf("cli: %w", err)
	}

	c, err := buildContext(cfg)
	if err != nil {
		return fmt.Errorf("cli: %w", err)
	}
	defer c.Close()

	if !opts.autostart {
		if err := confirmModOrder(cmd, c); err != nil {
			return err
		}
	}

	core.LogInfo("starting pipeline (dry_run=%v, data_dir=%s)", dryRun, cfg.DataDir)
	if err := c.Run(cmd.Context(), cfg.DataDir, true, dryRun); err != nil {
		return fmt.Errorf("cli: run: %w", err)
	}

	warnings := c.Warnings.Messages()
	for _, w := range warnings {
		core.LogWarn("%s", w)
	}
	m := c.Pool.Metrics()
	core.LogInfo("finished (%d warnings, %d tasks, %.1f tasks/sec, %.2fms avg task)",
		len(warnings), m.TotalCompleted(), m.TasksPerSecond(), m.AvgTaskMS())
	return nil
}
