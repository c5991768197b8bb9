package cmd

import (
	"fmt"

	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/elmisi/amorph-code/internal/uidgen"
	"github.com/spf13/cobra"
)

var (
	adduidInPlace bool
	adduidDeep    bool
)

var adduidCmd = &cobra.Command{
	Use:   "add-uid <path>",
	Short: "Add missing ids to statements and function defs",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddUID,
}

func init() {
	rootCmd.AddCommand(adduidCmd)
	adduidCmd.Flags().BoolVarP(&adduidInPlace, "in-place", "i", false, "write the result back to the file")
	adduidCmd.Flags().BoolVar(&adduidDeep, "deep", false, "assign ids recursively in function bodies and if blocks")
}

func runAddUID(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	prog, ok := unwrapProgram(data)
	if !ok {
		return exitCode(1, "program must be a list or {program:[...]} wrapper")
	}

	uidgen.AddUIDs(prog, adduidDeep)

	if m, ok := data.(map[string]any); ok {
		m["program"] = prog
	} else {
		data = prog
	}

	if adduidInPlace {
		return writeJSON(args[0], data)
	}
	buf, err := canon.Dump(data)
	if err != nil {
		return err
	}
	fmt.Fprint(c.OutOrStdout(), string(buf))
	return nil
}
