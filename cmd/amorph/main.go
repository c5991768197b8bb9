// Command amorph is the CLI entry point: run, validate, edit, rewrite,
// migrate, pack/unpack, bench, and suggest subcommands over JSON-encoded
// Amorph programs.
package main

import (
	"os"

	"github.com/elmisi/amorph-code/cmd/amorph/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
