// Command pgpatcher is the headless CLI entrypoint for the mesh/texture
// patcher. See internal/app for the pipeline it drives.
package main

import (
	"os"

	"github.com/modpatch/pgpatcher/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
