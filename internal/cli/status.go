package cli

import (
	"github.com/spf13/cobra"
)

var statusFlags packageFlags

var statusCmd = &cobra.Command{
	Use:   "status <package-path>",
	Short: "Show whether a package is installed",
	Long: `Display the install state of the extension package at <package-path>.

For module packages this shows the target directory and whether the deployed
files still match the package. For component packages it shows whether the
package is registered in the import manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := newProject()
		if err != nil {
			return err
		}

		desc, err := proj.loadPackage(args[0], &statusFlags)
		if err != nil {
			return err
		}

		st, err := proj.newInspector().Inspect(desc, desc.Path)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(st)
		}

		PrintSection("Package Status")
		PrintLabelValue("Package", st.Package)
		PrintLabelValue("Kind", string(st.Kind))
		PrintLabelValue("Installed", yesNo(st.Installed))
		if st.Target != "" {
			PrintLabelValue("Target", st.Target)
		}
		if st.Import != "" {
			PrintLabelValue("Import", st.Import)
		}
		if st.Installed && st.Target != "" {
			if st.Modified {
				PrintLabelValueWithColor("Modified", "yes (deployed files differ from the package)", warningColor)
			} else {
				PrintLabelValueWithColor("Modified", "no", successColor)
			}
		}
		return nil
	},
}

func init() {
	statusFlags.register(statusCmd, false)
}
