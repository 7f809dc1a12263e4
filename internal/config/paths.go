// Package config resolves the project tree extinstall deploys into.
//
// A project root contains the modules directory, the import manifest and the
// host application's derived container cache. Their locations come from
// Settings (see Load) and are resolved against the root here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by extinstall for one project.
type Paths struct {
	// Root is the project root the host package manager runs in
	Root string

	// Modules is the directory module packages are deployed into
	Modules string

	// ImportManifest is the YAML file listing configuration imports
	ImportManifest string

	// ContainerCache is the derived container cache deleted after manifest writes
	ContainerCache string
}

// ResolveRoot returns the project root.
// Precedence: explicit flag value, EXTINSTALL_ROOT, current directory.
func ResolveRoot(flagValue string) (string, error) {
	root := flagValue
	if root == "" {
		root = os.Getenv("EXTINSTALL_ROOT")
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root %q: %w", root, err)
	}
	return abs, nil
}

// NewPaths resolves settings against the project root.
// Absolute settings values are used as-is.
func NewPaths(root string, s *Settings) *Paths {
	return &Paths{
		Root:           root,
		Modules:        resolve(root, s.ModulesDir),
		ImportManifest: resolve(root, s.ImportManifest),
		ContainerCache: resolve(root, s.ContainerCache),
	}
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// EnsureDirectories creates the directories extinstall writes into.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Modules,
		filepath.Dir(p.ImportManifest),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
