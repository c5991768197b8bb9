package cmd

import (
	"os"

	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/spf13/cobra"
)

var minifyOutput string

var minifyCmd = &cobra.Command{
	Use:   "minify <path>",
	Short: "Rewrite a program with short single-letter keys",
	Args:  cobra.ExactArgs(1),
	RunE:  runMinify,
}

func init() {
	rootCmd.AddCommand(minifyCmd)
	minifyCmd.Flags().StringVarP(&minifyOutput, "output", "o", "", "output file path (required)")
	minifyCmd.MarkFlagRequired("output")
}

func runMinify(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	minified := canon.Minify(data)
	buf, err := canon.DumpMinified(minified)
	if err != nil {
		return exitCode(1, "%s", err)
	}
	if err := os.WriteFile(minifyOutput, buf, 0o644); err != nil {
		return exitCode(1, "%s", err)
	}
	return nil
}
