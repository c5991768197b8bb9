package cmd

import (
	"fmt"

	"github.com/elmisi/amorph-code/internal/evalvm"
	"github.com/elmisi/amorph-code/internal/ioeffects"
	"github.com/spf13/cobra"
)

var (
	runTrace      bool
	runTraceJSON  bool
	runQuiet      bool
	runDenyInput  bool
	runDenyPrint  bool
)

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Run a program file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "enable execution trace (text)")
	runCmd.Flags().BoolVar(&runTraceJSON, "trace-json", false, "enable execution trace as JSON events (stderr)")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "silence program prints")
	runCmd.Flags().BoolVar(&runDenyInput, "deny-input", false, "deny the input effect")
	runCmd.Flags().BoolVar(&runDenyPrint, "deny-print", false, "deny the print effect")
}

func runProgram(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}

	var io ioeffects.IO
	if runQuiet {
		io = ioeffects.NewQuietIO()
	} else {
		io = ioeffects.NewStdIO(c.OutOrStdout(), c.InOrStdin())
	}

	vm := evalvm.New(evalvm.Options{
		Trace:      runTrace,
		TraceJSON:  runTraceJSON,
		IO:         io,
		AllowPrint: !runDenyPrint,
		AllowInput: !runDenyInput,
		RichErrors: true,
		TraceOut:   c.ErrOrStderr(),
		EventOut:   c.ErrOrStderr(),
	})

	result, err := vm.Run(data)
	if err != nil {
		return exitCode(1, "%s", err)
	}
	if result != nil {
		fmt.Fprintln(c.OutOrStdout(), evalvm.Display(result))
	}
	return nil
}
