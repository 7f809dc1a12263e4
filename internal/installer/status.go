package installer

import (
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/extinstall/internal/deploy"
	"github.com/danieljhkim/extinstall/internal/hash"
	"github.com/danieljhkim/extinstall/internal/manifest"
	"github.com/danieljhkim/extinstall/internal/pkgmeta"
)

// Status is the current state of one package in the project.
type Status struct {
	Package   string       `json:"package"`
	Kind      pkgmeta.Kind `json:"kind"`
	Installed bool         `json:"installed"`

	// Target is where a module package is (or would be) deployed
	Target string `json:"target,omitempty"`

	// Import is the manifest entry a component package is registered under
	Import string `json:"import,omitempty"`

	// Modified is set when a deployed module no longer matches the package
	// source.
	Modified bool `json:"modified,omitempty"`
}

// ImportLister lists the entries of the import manifest.
type ImportLister interface {
	Imports() ([]string, error)
}

// Inspector reports package status without changing anything.
type Inspector struct {
	deployer *deploy.Deployer
	imports  ImportLister
	hasher   hash.Hasher
}

// NewInspector creates a new Inspector.
func NewInspector(deployer *deploy.Deployer, imports ImportLister, hasher hash.Hasher) *Inspector {
	return &Inspector{
		deployer: deployer,
		imports:  imports,
		hasher:   hasher,
	}
}

// Inspect returns the status of the package at packagePath.
func (i *Inspector) Inspect(desc *pkgmeta.Descriptor, packagePath string) (*Status, error) {
	switch desc.Kind {
	case pkgmeta.KindComponent:
		return i.inspectComponent(desc, packagePath)
	case pkgmeta.KindModule:
		return i.inspectModule(desc, packagePath)
	default:
		return nil, fmt.Errorf("%w: %q for package %s", ErrUnknownKind, desc.Kind, desc.Name)
	}
}

func (i *Inspector) inspectComponent(desc *pkgmeta.Descriptor, packagePath string) (*Status, error) {
	entries, err := i.imports.Imports()
	if err != nil {
		return nil, err
	}

	want := manifest.NormalizePath(packagePath)
	st := &Status{
		Package: desc.Name,
		Kind:    pkgmeta.KindComponent,
		Import:  want,
	}
	for _, entry := range entries {
		if manifest.NormalizePath(entry) == want {
			st.Installed = true
			break
		}
	}
	return st, nil
}

func (i *Inspector) inspectModule(desc *pkgmeta.Descriptor, packagePath string) (*Status, error) {
	target, err := i.deployer.TargetPath(desc)
	if err != nil {
		return nil, err
	}
	installed, err := i.deployer.IsInstalled(desc)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Package:   desc.Name,
		Kind:      pkgmeta.KindModule,
		Installed: installed,
		Target:    target,
	}
	if !installed {
		return st, nil
	}

	sourceHash, err := i.hasher.HashTree(filepath.Clean(packagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to hash package %s: %w", desc.Name, err)
	}
	targetHash, err := i.hasher.HashTree(target)
	if err != nil {
		return nil, fmt.Errorf("failed to hash deployed module %s: %w", target, err)
	}
	st.Modified = sourceHash != targetHash
	return st, nil
}
