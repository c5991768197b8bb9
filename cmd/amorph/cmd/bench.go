package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/elmisi/amorph-code/internal/bench"
	"github.com/spf13/cobra"
)

var benchJSON bool

var benchCmd = &cobra.Command{
	Use:   "bench [paths...]",
	Short: "Benchmark program size and validate/run timing",
	Args:  cobra.ArbitraryArgs,
	RunE:  runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "output JSON only")
}

func runBench(c *cobra.Command, args []string) error {
	report := bench.Bench(args)

	if benchJSON {
		buf, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return exitCode(1, "%s", err)
		}
		fmt.Fprintln(c.OutOrStdout(), string(buf))
		return nil
	}

	agg := report.Aggregate
	fmt.Fprintf(c.OutOrStdout(), "files=%d avg_ratio=%v avg_validate_ms=%v avg_run_ms=%v\n",
		agg.Files, agg.AvgRatio, agg.AvgValidateMs, derefFloat(agg.AvgRunMs))
	for _, r := range report.Results {
		fmt.Fprintf(c.OutOrStdout(), "- %s: canon=%dB min=%dB ratio=%v validate_ms=%v run_ms=%v input=%v\n",
			r.Path, r.SizeBytesCanonical, r.SizeBytesMinified, r.RatioMinOverCanon,
			r.ValidateMs, derefFloat(r.RunMs), r.HasInput)
	}
	return nil
}

func derefFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
