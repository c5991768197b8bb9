package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/elmisi/amorph-code/internal/amerr"
	"github.com/elmisi/amorph-code/internal/typecheck"
	"github.com/elmisi/amorph-code/internal/validate"
	"github.com/spf13/cobra"
)

var (
	validateJSON        bool
	validateCheckTypes  bool
	validateCheckScopes bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a program's shape and semantics",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit a JSON issue report instead of failing fast")
	validateCmd.Flags().BoolVar(&validateCheckTypes, "check-types", false, "enable advisory type checking")
	validateCmd.Flags().BoolVar(&validateCheckScopes, "check-scopes", false, "enable scope analysis")
}

func runValidate(c *cobra.Command, args []string) error {
	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}

	if !validateJSON {
		if err := validate.ValidateProgram(data); err != nil {
			return exitCode(1, "Invalid: %s", err)
		}
		fmt.Fprintln(c.OutOrStdout(), "OK")
		return nil
	}

	issues := validate.ValidateProgramReport(data, true)
	prog, hasProg := unwrapProgram(data)
	if validateCheckScopes && hasProg {
		issues = append(issues, validate.AnalyzeScopes(prog)...)
	}
	if validateCheckTypes && hasProg {
		inf := typecheck.NewInferencer()
		for _, terr := range inf.CheckProgram(prog) {
			issues = append(issues, amerr.ValidationIssue{
				Code: terr.Code, Message: terr.Message, Path: terr.Path,
				Severity: amerr.SeverityWarning, Hint: terr.Hint,
			})
		}
	}

	ok := true
	for _, issue := range issues {
		if issue.Severity == amerr.SeverityError {
			ok = false
		}
	}

	buf, _ := json.MarshalIndent(map[string]any{"ok": ok, "issues": issues}, "", "  ")
	fmt.Fprintln(c.OutOrStdout(), string(buf))
	if !ok {
		return exitCode(1, "validation failed")
	}
	return nil
}
