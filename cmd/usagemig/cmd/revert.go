package cmd

import (
	"github.com/snikjou/usagemig/internal/migrate"

	"github.com/spf13/cobra"
)

var revertFlags runFlags

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Remove the usage field from documents a previous run added it to",
	Long: `Remove the usage field from documents whose updatedBy matches the
configured run id. Documents touched by other runs are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(cmd, migrate.Reverse, revertFlags)
	},
}

func init() {
	addRunFlags(revertCmd, &revertFlags)
	rootCmd.AddCommand(revertCmd)
}
