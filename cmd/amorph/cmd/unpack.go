package cmd

import (
	"os"

	"github.com/elmisi/amorph-code/internal/acir"
	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/spf13/cobra"
)

var (
	unpackOutput string
	unpackFormat string
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <input>",
	Short: "Unpack ACIR to a canonical JSON program",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnpack,
}

func init() {
	rootCmd.AddCommand(unpackCmd)
	unpackCmd.Flags().StringVarP(&unpackOutput, "output", "o", "", "output file path (required)")
	unpackCmd.Flags().StringVar(&unpackFormat, "format", "", "packed format: cbor|json (default: detect)")
	unpackCmd.MarkFlagRequired("output")
}

func runUnpack(c *cobra.Command, args []string) error {
	if unpackFormat != "" && unpackFormat != "cbor" && unpackFormat != "json" {
		return exitCode(1, "--format must be cbor or json")
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}

	prog, err := acir.Unpack(raw, unpackFormat)
	if err != nil {
		return exitCode(1, "%s", err)
	}

	buf, err := canon.Dump(prog)
	if err != nil {
		return exitCode(1, "%s", err)
	}
	if err := os.WriteFile(unpackOutput, buf, 0o644); err != nil {
		return exitCode(1, "%s", err)
	}
	return nil
}
