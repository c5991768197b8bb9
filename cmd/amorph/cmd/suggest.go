package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elmisi/amorph-code/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	suggestJSON  bool
	suggestApply bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <path>",
	Short: "Suggest improvements and refactorings for a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	suggestCmd.Flags().BoolVar(&suggestApply, "apply", false, "interactively apply suggestions (not supported in this build)")
}

func runSuggest(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	prog, ok := unwrapProgram(data)
	if !ok {
		return exitCode(1, "program must be a list or {program:[...]} wrapper")
	}

	suggestions := suggest.SuggestImprovements(prog)

	if suggestJSON {
		buf, err := json.MarshalIndent(map[string]any{
			"total":       len(suggestions),
			"suggestions": suggestions,
		}, "", "  ")
		if err != nil {
			return exitCode(1, "%s", err)
		}
		fmt.Fprintln(c.OutOrStdout(), string(buf))
		return nil
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(c.OutOrStdout(), "No suggestions found. Program looks good!")
		return nil
	}

	fmt.Fprintf(c.OutOrStdout(), "Found %d suggestions:\n\n", len(suggestions))
	for i, sug := range suggestions {
		fmt.Fprintf(c.OutOrStdout(), "%d. [%s] %s\n", i+1, strings.ToUpper(sug.Priority), sug.Operation)
		fmt.Fprintf(c.OutOrStdout(), "   Reason: %s\n", sug.Reason)
		fmt.Fprintf(c.OutOrStdout(), "   Impact: %s\n\n", sug.EstimatedImpact)
	}

	if suggestApply {
		fmt.Fprintln(c.ErrOrStderr(), "note: --apply is not interactive in this build; re-run amorph edit with the printed edit_spec values instead")
	}
	return nil
}
