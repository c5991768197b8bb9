package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/elmisi/amorph-code/internal/amerr"
	"github.com/elmisi/amorph-code/internal/editengine"
	"github.com/spf13/cobra"
)

var (
	editDryRun    bool
	editJSONError bool
)

var editCmd = &cobra.Command{
	Use:   "edit <program> <edits>",
	Short: "Apply declarative edits to a program",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "preview changes without writing the program file")
	editCmd.Flags().BoolVar(&editJSONError, "json-errors", false, "emit a JSON error object on failure")
}

func runEdit(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	rawEdits, err := readJSON(args[1])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	edits, ok := rawEdits.([]any)
	if !ok {
		return exitCode(1, "edits must be a list")
	}

	prog, ok := unwrapProgram(data)
	if !ok {
		return exitCode(1, "program must be a list or {program:[...]} wrapper")
	}

	report, err := editengine.ApplyEdits(&prog, edits)
	if err != nil {
		if editJSONError {
			if ee, ok := err.(*amerr.EditError); ok {
				buf, _ := json.Marshal(ee)
				fmt.Fprintln(c.OutOrStdout(), string(buf))
			} else {
				buf, _ := json.Marshal(map[string]any{"error": err.Error()})
				fmt.Fprintln(c.OutOrStdout(), string(buf))
			}
		}
		return exitCode(1, "%s", err)
	}

	if m, ok := data.(map[string]any); ok {
		m["program"] = prog
	} else {
		data = prog
	}

	if editDryRun {
		buf, _ := json.MarshalIndent(map[string]any{"applied": report.Applied, "preview": data}, "", "  ")
		fmt.Fprintln(c.OutOrStdout(), string(buf))
		return nil
	}

	if err := writeJSON(args[0], data); err != nil {
		return exitCode(1, "%s", err)
	}
	buf, _ := json.Marshal(map[string]any{"applied": report.Applied})
	fmt.Fprintln(c.OutOrStdout(), string(buf))
	return nil
}
