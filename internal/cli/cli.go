// Package cli is the cobra command tree for pgpatcher, grounded on
// baaaaaaaka-codex-helper/internal/cli's root-command-plus-subcommand
// layout: a rootOptions struct carrying persistent flags, newXCmd
// constructors returning *cobra.Command, and an Execute that maps the
// returned error onto a process exit code.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/modpatch/pgpatcher/internal/core"
)

// rootOptions carries the persistent flags shared by every subcommand
// (SPEC_FULL.md's CLI section; spec.md §6).
type rootOptions struct {
	configPath string
	dataDir    string
	outputDir  string
	verbosity  int
	autostart  bool
	zipOutput  bool
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pgpatcher",
		Short:         "Batch-patch NIF meshes and plugin alt-textures for mod-manager installs",
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			core.SetVerbosity(opts.verbosity)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "pgpatcher.toml", "Path to pgpatcher.toml")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Override the game data directory")
	cmd.PersistentFlags().StringVar(&opts.outputDir, "output-dir", "", "Override the patched-output directory")
	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity (-v debug, -vv debug+caller)")
	cmd.PersistentFlags().BoolVar(&opts.autostart, "autostart", false, "Skip the interactive mod-order confirmation (§6)")
	cmd.PersistentFlags().BoolVar(&opts.zipOutput, "zip", false, "Zip the output tree after a successful run")

	cmd.AddCommand(
		newRunCmd(opts),
		newDryrunCmd(opts),
	)

	return cmd
}
