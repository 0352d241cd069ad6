package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modpatch/pgpatcher/internal/app"
)

// confirmModOrder prints the resolved mod priority order and asks for
// confirmation before patching (spec.md §6: the UI's sort-order dialog,
// skippable with --autostart). A headless CLI has no dialog, so this is
// a single stdin prompt instead.
func confirmModOrder(cmd *cobra.Command, c *app.Context) error {
	mods := c.ModDir.Mods()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Mod priority order (lowest wins conflicts last):")
	for _, m := range mods {
		state := "enabled"
		if !m.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(out, "  [%d] %s (%s)\n", m.Priority, m.Name, state)
	}

	fmt.Fprint(out, "Proceed with this order? [Y/n] ")
	answer := readLine(cmd.InOrStdin())
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return nil
	default:
		return fmt.Errorf("cli: aborted by user")
	}
}

func readLine(r io.Reader) string {
	line, _ := bufio.NewReader(r).ReadString('\n')
	return line
}
