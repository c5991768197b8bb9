package cmd

import (
	"os"

	"github.com/elmisi/amorph-code/internal/acir"
	"github.com/spf13/cobra"
)

var (
	packOutput string
	packFormat string
)

var packCmd = &cobra.Command{
	Use:   "pack <input>",
	Short: "Pack a program to ACIR (CBOR if available, else JSON)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output file path (required)")
	packCmd.Flags().StringVar(&packFormat, "format", "", "packing format: cbor|json (default: prefer cbor)")
	packCmd.MarkFlagRequired("output")
}

func runPack(c *cobra.Command, args []string) error {
	if packFormat != "" && packFormat != "cbor" && packFormat != "json" {
		return exitCode(1, "--format must be cbor or json")
	}

	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}

	preferCBOR := packFormat != "json"
	buf, _, err := acir.Pack(data, preferCBOR)
	if err != nil {
		return exitCode(1, "%s", err)
	}
	if err := os.WriteFile(packOutput, buf, 0o644); err != nil {
		return exitCode(1, "%s", err)
	}
	return nil
}
