package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "Inspect and maintain the configuration import manifest",
	Long: `Commands for the configuration import manifest that component packages
are registered in.`,
}

// importsListOutput is the --json document of 'imports list'.
type importsListOutput struct {
	Manifest string   `json:"manifest"`
	Imports  []string `json:"imports"`
}

var importsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered imports in manifest order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := newProject()
		if err != nil {
			return err
		}

		entries, err := proj.imports.Imports()
		if err != nil {
			return err
		}

		if jsonOutput {
			if entries == nil {
				entries = []string{}
			}
			return outputJSON(importsListOutput{
				Manifest: proj.paths.ImportManifest,
				Imports:  entries,
			})
		}

		PrintSection("Imports")
		PrintLabelValue("Manifest", proj.paths.ImportManifest)
		if len(entries) == 0 {
			PrintEmptyState("No imports registered.")
			return nil
		}
		PrintNumberedList(entries, 1)
		return nil
	},
}

// importsPruneOutput is the --json document of 'imports prune'.
type importsPruneOutput struct {
	Removed []string `json:"removed"`
}

var importsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove imports whose directories no longer exist",
	Long: `Remove every import manifest entry whose directory no longer exists.

This is the same cleanup a component install runs before registering its
package. The container cache is invalidated when the manifest changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := newProject()
		if err != nil {
			return err
		}

		if err := proj.ensureDirectories(); err != nil {
			return err
		}

		removed, err := proj.imports.RemoveNonExistingImports()
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			if err := proj.cache.Invalidate(); err != nil {
				return err
			}
		} else {
			removed = []string{}
		}

		if jsonOutput {
			return outputJSON(importsPruneOutput{Removed: removed})
		}

		PrintSection("Prune Imports")
		if len(removed) == 0 {
			PrintEmptyState("No stale imports found.")
			return nil
		}
		PrintSuccess(fmt.Sprintf("Removed %s", PrintCount(len(removed), "stale import", "stale imports")))
		PrintList(removed, 1)
		return nil
	},
}

func init() {
	importsCmd.AddCommand(importsListCmd)
	importsCmd.AddCommand(importsPruneCmd)
}
