package cmd

import (
	"fmt"

	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/spf13/cobra"
)

var fmtInPlace bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <path>",
	Short: "Canonicalize a program's JSON formatting and key order",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtInPlace, "in-place", "i", false, "write the result back to the file")
}

func runFmt(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}

	if fmtInPlace {
		return writeJSON(args[0], data)
	}
	buf, err := canon.Dump(data)
	if err != nil {
		return err
	}
	fmt.Fprint(c.OutOrStdout(), string(buf))
	return nil
}
