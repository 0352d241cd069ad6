package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modpatch/pgpatcher/internal/core"
)

// newDryrunCmd implements spec.md §4.8: resolve mod order and run every
// classify/patch decision without writing the output tree or any
// persistent cache, then print the per-mod report so a user can fix
// their mod order before a real run.
func newDryrunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dryrun",
		Short: "Report mod order and patch decisions without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, true)
			if err != nil {
				return fmt.Errorf("cli: %w", err)
			}

			c, err := buildContext(cfg)
			if err != nil {
				return fmt.Errorf("cli: %w", err)
			}
			defer c.Close()

			core.LogInfo("starting dry run (data_dir=%s)", cfg.DataDir)
			if err := c.Run(cmd.Context(), cfg.DataDir, true, true); err != nil {
				return fmt.Errorf("cli: dryrun: %w", err)
			}

			report := c.ModDir.DryRunReport()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("cli: encode dry-run report: %w", err)
			}

			for _, w := range c.Warnings.Messages() {
				core.LogWarn("%s", w)
			}
			return nil
		},
	}
	return cmd
}
