package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/extinstall/internal/config"
	"github.com/danieljhkim/extinstall/internal/deploy"
	"github.com/danieljhkim/extinstall/internal/fsops"
	"github.com/danieljhkim/extinstall/internal/hash"
	"github.com/danieljhkim/extinstall/internal/imports"
	"github.com/danieljhkim/extinstall/internal/installer"
	"github.com/danieljhkim/extinstall/internal/manifest"
	"github.com/danieljhkim/extinstall/internal/pkgmeta"
	"github.com/danieljhkim/extinstall/internal/prompt"
)

// project wires the real implementations for one project root.
type project struct {
	paths    *config.Paths
	settings *config.Settings
	imports  *imports.Service
	cache    *imports.DerivedCache
	deployer *deploy.Deployer
}

// newProject resolves the project root and settings from the global flags.
func newProject() (*project, error) {
	root, err := config.ResolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	settings, used, err := config.Load(config.LoadOptions{Root: root, ConfigFile: configFile})
	if err != nil {
		return nil, err
	}
	if used != "" {
		log.Debug().Str("config", used).Msg("Loaded settings file")
	}

	paths := config.NewPaths(root, settings)
	fs := fsops.NewRealFS()
	store := manifest.NewFileStore(fs, paths.ImportManifest)

	return &project{
		paths:    paths,
		settings: settings,
		imports:  imports.NewService(store, fs),
		cache:    imports.NewDerivedCache(fs, paths.ContainerCache),
		deployer: deploy.NewDeployer(fs, paths.Modules, settings.ExtraNamespace),
	}, nil
}

// ensureDirectories creates the project directories the write paths need.
// Read-only commands never call it.
func (p *project) ensureDirectories() error {
	if err := p.paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}
	return nil
}

// newInspector creates a status inspector for the project.
func (p *project) newInspector() *installer.Inspector {
	return installer.NewInspector(p.deployer, p.imports, hash.NewSHA256Hasher())
}

// packageFlags are the per-package flags shared by install, update and status.
type packageFlags struct {
	kind            string
	name            string
	targetDirectory string
	yes             bool
	no              bool
}

func (f *packageFlags) register(cmd *cobra.Command, interactive bool) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "Package kind (component or module), overrides the package type")
	cmd.Flags().StringVar(&f.name, "name", "", "Package name, overrides the package metadata")
	cmd.Flags().StringVar(&f.targetDirectory, "target-directory", "", "Module directory below the modules dir, overrides the package metadata")
	if interactive {
		cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Answer yes to overwrite questions")
		cmd.Flags().BoolVar(&f.no, "no", false, "Answer no to overwrite questions")
		cmd.MarkFlagsMutuallyExclusive("yes", "no")
	}
}

// loadPackage reads the package at path and applies flag overrides.
func (p *project) loadPackage(path string, flags *packageFlags) (*pkgmeta.Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package path %q: %w", path, err)
	}

	desc, err := pkgmeta.Load(abs)
	if err != nil {
		return nil, err
	}

	if flags.name != "" {
		desc.Name = flags.name
	}
	if flags.kind != "" {
		kind, err := pkgmeta.ParseKind(flags.kind)
		if err != nil {
			return nil, err
		}
		desc.Kind = kind
	}
	if flags.targetDirectory != "" {
		desc.SetTargetDirectory(p.settings.ExtraNamespace, flags.targetDirectory)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// asker picks where overwrite answers come from.
func (f *packageFlags) asker(in io.Reader, out io.Writer) prompt.Asker {
	switch {
	case f.yes:
		return &prompt.FixedAsker{Answer: "y", Out: out}
	case f.no:
		return &prompt.FixedAsker{Answer: "n", Out: out}
	default:
		return prompt.NewConsoleAsker(in, out)
	}
}

// messageWriter is where progress messages and questions go. With --json
// stdout is reserved for the result document.
func messageWriter() io.Writer {
	if jsonOutput {
		return os.Stderr
	}
	return os.Stdout
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
