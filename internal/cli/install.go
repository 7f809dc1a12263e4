package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/extinstall/internal/installer"
	"github.com/danieljhkim/extinstall/internal/logging"
	"github.com/danieljhkim/extinstall/internal/prompt"
)

var installFlags packageFlags

var installCmd = &cobra.Command{
	Use:   "install <package-path>",
	Short: "Install an extension package into the project",
	Long: `Install the extension package extracted at <package-path>.

Component packages are added to the configuration import manifest; imports
whose directories no longer exist are removed first.

Module packages are copied into the modules directory. If the target
directory already exists the install is aborted and nothing is changed.
Use 'update' to replace an installed module.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackageOperation(cmd, args[0], &installFlags, installer.Installer.Install)
	},
}

// packageOperation is Installer.Install or Installer.Update.
type packageOperation func(installer.Installer, context.Context, string) (*installer.Result, error)

func runPackageOperation(cmd *cobra.Command, path string, flags *packageFlags, op packageOperation) error {
	done := logging.LogOperationStart(logging.GetLogger("cli"), cmd.Name())
	defer done()

	proj, err := newProject()
	if err != nil {
		return err
	}

	desc, err := proj.loadPackage(path, flags)
	if err != nil {
		return err
	}

	if err := proj.ensureDirectories(); err != nil {
		return err
	}

	out := messageWriter()
	inst, err := installer.New(desc, installer.Deps{
		Reporter:  newReporter(),
		Imports:   proj.imports,
		Cache:     proj.cache,
		Deployer:  proj.deployer,
		Confirmer: prompt.NewConfirmer(flags.asker(cmd.InOrStdin(), out)),
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := op(inst, ctx, desc.Path)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}
	printResult(result)
	return nil
}

// newReporter prints installer progress. With --json it goes to stderr
// unstyled so stdout stays a single document.
func newReporter() installer.Reporter {
	if jsonOutput {
		return installer.ReporterFunc(func(message string) {
			_, _ = fmt.Fprintln(os.Stderr, message)
		})
	}
	return installer.ReporterFunc(PrintInfo)
}

func printResult(result *installer.Result) {
	switch result.Action {
	case installer.ActionInstalled:
		PrintSuccess(fmt.Sprintf("Installed %s package %s", result.Kind, result.Package))
	case installer.ActionUpdated:
		PrintSuccess(fmt.Sprintf("Updated %s package %s", result.Kind, result.Package))
	case installer.ActionOverwritten:
		PrintSuccess(fmt.Sprintf("Overwrote %s with %s", result.Target, result.Package))
	case installer.ActionAborted:
		PrintWarning(fmt.Sprintf("%s was not installed. Use 'extinstall update' to replace the existing directory.", result.Package))
	case installer.ActionDeclined:
		PrintWarning(fmt.Sprintf("%s was not updated", result.Package))
	}

	if result.Target != "" {
		PrintLabelValue("Target", result.Target)
	}
	if result.Import != "" {
		PrintLabelValue("Import", result.Import)
	}
	if result.ManifestChanged {
		PrintLabelValue("Import manifest", "updated, container cache invalidated")
	}
}

func init() {
	installFlags.register(installCmd, false)
}
