package cmd

import (
	"github.com/snikjou/usagemig/internal/constants"
	"github.com/snikjou/usagemig/internal/migrate"

	"github.com/spf13/cobra"
)

var stripFlags runFlags

var stripCmd = &cobra.Command{
	Use:   "strip",
	Short: "Remove the usage field regardless of which run added it",
	Long: `Remove the usage field from every matching document that has one,
no matter which run wrote it. Capped by --limit as a safety net; pass
--limit 0 to process everything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(cmd, migrate.Strip, stripFlags)
	},
}

func init() {
	addRunFlagsWithLimit(stripCmd, &stripFlags, constants.DefaultStripLimit)
	rootCmd.AddCommand(stripCmd)
}
