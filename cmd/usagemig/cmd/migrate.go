package cmd

import (
	"github.com/snikjou/usagemig/internal/migrate"

	"github.com/spf13/cobra"
)

var migrateFlags runFlags

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Add a null usage field to documents that lack one",
	Long: `Add a usage field with null token counters to every matching document
that does not have one yet. Documents changed by the run are stamped with
the configured run id so a later revert can find them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(cmd, migrate.Forward, migrateFlags)
	},
}

func init() {
	addRunFlags(migrateCmd, &migrateFlags)
	rootCmd.AddCommand(migrateCmd)
}
