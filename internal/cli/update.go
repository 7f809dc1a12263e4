package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/extinstall/internal/installer"
)

var updateFlags packageFlags

var updateCmd = &cobra.Command{
	Use:   "update <package-path>",
	Short: "Update an installed extension package",
	Long: `Update the extension package extracted at <package-path>.

Component packages behave exactly as on install.

Module packages are copied into the modules directory. If the target
directory already exists you are asked whether to overwrite it; the
default answer is no. Use --yes or --no to answer without a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackageOperation(cmd, args[0], &updateFlags, installer.Installer.Update)
	},
}

func init() {
	updateFlags.register(updateCmd, true)
}
