// Package cmd implements the amorph CLI, one cobra subcommand per
// verb, grounded on CWBudde-go-dws/cmd/dwscript/cmd's root-command
// layout and original_source/amorph/cli.py's flag surface.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "amorph",
	Short:   "Amorph program interpreter and toolkit",
	Long:    `amorph runs, validates, edits, rewrites, and packs JSON-encoded Amorph programs.`,
	Version: "0.1.0-dev",
}

// Execute runs the root command, returning the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if ce, ok := err.(*exitError); ok {
			return ce.code
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

// exitError carries a specific process exit code through cobra's
// RunE error-return path.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitCode(code int, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func readJSON(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func writeJSON(path string, data any) error {
	buf, err := canon.Dump(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func unwrapProgram(data any) ([]any, bool) {
	if m, ok := data.(map[string]any); ok {
		if p, ok := m["program"].([]any); ok {
			return p, true
		}
		return nil, false
	}
	if list, ok := data.([]any); ok {
		return list, true
	}
	return nil, false
}
