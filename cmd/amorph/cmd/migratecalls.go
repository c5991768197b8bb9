package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/elmisi/amorph-code/internal/migrate"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate-calls <path>",
	Short: "Rewrite call sites between name-based and id-based addressing",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrateCalls,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateTo, "to", "id", "target call style: id|name")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview changes without writing the program file")
}

func runMigrateCalls(c *cobra.Command, args []string) error {
	if migrateTo != "id" && migrateTo != "name" {
		return exitCode(1, "--to must be id or name")
	}

	data, err := readJSON(args[0])
	if err != nil {
		return exitCode(1, "%s", err)
	}
	prog, ok := unwrapProgram(data)
	if !ok {
		return exitCode(1, "program must be a list or {program:[...]} wrapper")
	}

	var changed int
	if migrateTo == "id" {
		changed = migrate.ToID(prog)
	} else {
		changed = migrate.ToName(prog)
	}

	if m, ok := data.(map[string]any); ok {
		m["program"] = prog
	} else {
		data = prog
	}

	if migrateDryRun {
		buf, _ := json.MarshalIndent(map[string]any{"changed": changed, "preview": data}, "", "  ")
		fmt.Fprintln(c.OutOrStdout(), string(buf))
		return nil
	}

	if err := writeJSON(args[0], data); err != nil {
		return exitCode(1, "%s", err)
	}
	buf, _ := json.Marshal(map[string]any{"changed": changed})
	fmt.Fprintln(c.OutOrStdout(), string(buf))
	return nil
}
