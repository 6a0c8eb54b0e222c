package cmd

import (
	"github.com/snikjou/usagemig/internal/constants"
	"github.com/snikjou/usagemig/internal/output"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the CLI",
	Run: func(cmd *cobra.Command, args []string) {
		output.Header(constants.ProjectName)
		output.KeyValue("Version", *constants.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
