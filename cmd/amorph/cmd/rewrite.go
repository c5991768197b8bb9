package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/elmisi/amorph-code/internal/pattern"
	"github.com/elmisi/amorph-code/internal/uidgen"
	"github.com/spf13/cobra"
)

var (
	rewriteDryRun bool
	rewriteLimit  int
	rewriteHasLim bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <program> <rules>",
	Short: "Apply pattern-match rewrite rules to a program",
	Args:  cobra.ExactArgs(2),
	RunE:  runRewrite,
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rewriteCmd.Flags().BoolVar(&rewriteDryRun, "dry-run", false, "preview changes without writing the program file")
	rewriteCmd.Flags().IntVar(&rewriteLimit, "limit", 0, "fail with exit code 2 if replacements exceed this count")
}

func runRewrite(c *cobra.Command, args []string) error {
	rewriteHasLim = c.Flags().Changed("limit")

	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	rawRules, err := readJSON(args[1])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	rawRuleList, ok := rawRules.([]any)
	if !ok {
		return exitCode(1, "rules must be a list")
	}
	rules, err := pattern.DecodeRules(rawRuleList)
	if err != nil {
		return exitCode(1, "%s", err)
	}

	prog, ok := unwrapProgram(data)
	if !ok {
		return exitCode(1, "program must be a list or {program:[...]} wrapper")
	}

	uidgen.AddUIDs(prog, true)
	before := deepCopyJSON(data)

	total := pattern.ApplyRewrite(prog, rules)

	if rewriteHasLim && total > rewriteLimit {
		var preview any
		if rewriteDryRun {
			preview = before
		}
		buf, _ := json.Marshal(map[string]any{"replacements": total, "capped_by": rewriteLimit, "preview": preview})
		fmt.Fprintln(c.OutOrStdout(), string(buf))
		return exitCode(2, "replacements %d exceed limit %d", total, rewriteLimit)
	}

	if m, ok := data.(map[string]any); ok {
		m["program"] = prog
	} else {
		data = prog
	}

	if rewriteDryRun {
		buf, _ := json.MarshalIndent(map[string]any{"replacements": total, "preview": data}, "", "  ")
		fmt.Fprintln(c.OutOrStdout(), string(buf))
		return nil
	}

	if err := writeJSON(args[0], data); err != nil {
		return exitCode(1, "%s", err)
	}
	buf, _ := json.Marshal(map[string]any{"replacements": total})
	fmt.Fprintln(c.OutOrStdout(), string(buf))
	return nil
}

func deepCopyJSON(v any) any {
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return v
	}
	return out
}
