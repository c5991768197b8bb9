package cmd

import (
	"os"

	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/spf13/cobra"
)

var unminifyOutput string

var unminifyCmd = &cobra.Command{
	Use:   "unminify <path>",
	Short: "Expand a minified program back to long-form keys",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnminify,
}

func init() {
	rootCmd.AddCommand(unminifyCmd)
	unminifyCmd.Flags().StringVarP(&unminifyOutput, "output", "o", "", "output file path (required)")
	unminifyCmd.MarkFlagRequired("output")
}

func runUnminify(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	expanded := canon.Unminify(data)
	buf, err := canon.Dump(expanded)
	if err != nil {
		return exitCode(1, "%s", err)
	}
	if err := os.WriteFile(unminifyOutput, buf, 0o644); err != nil {
		return exitCode(1, "%s", err)
	}
	return nil
}
