// Package installer drives install and update for one extension package.
//
// The host package manager calls Install or Update once per package, in
// sequence. New picks the variant for the package kind:
//   - ComponentInstaller: prunes stale imports and registers the package in
//     the import manifest. Install and update behave the same.
//   - ModuleInstaller: deploys the package files. Install refuses to touch an
//     existing target; update asks before overwriting it.
package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/extinstall/internal/pkgmeta"
)

// ErrUnknownKind indicates no installer exists for the package kind.
var ErrUnknownKind = errors.New("unknown package kind")

// Installer is the entry point the host invokes per package.
type Installer interface {
	Install(ctx context.Context, packagePath string) (*Result, error)
	Update(ctx context.Context, packagePath string) (*Result, error)
}

// Reporter receives progress messages for the operator.
type Reporter interface {
	Write(message string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(message string)

func (f ReporterFunc) Write(message string) { f(message) }

// ImportMerger is the manifest side of a component install.
// RemoveNonExistingImports returns the entries it dropped.
type ImportMerger interface {
	RemoveNonExistingImports() ([]string, error)
	AddImport(path string) (bool, error)
}

// CacheInvalidator drops state derived from the import manifest.
type CacheInvalidator interface {
	Invalidate() error
}

// FileDeployer is the file side of a module install.
type FileDeployer interface {
	Copy(ctx context.Context, desc *pkgmeta.Descriptor, sourcePath string) (string, error)
	ForceCopy(ctx context.Context, desc *pkgmeta.Descriptor, sourcePath string) (string, error)
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// Deps are the collaborators an installer may need. Component installers
// use Imports and Cache; module installers use Deployer and Confirmer.
type Deps struct {
	Reporter  Reporter
	Imports   ImportMerger
	Cache     CacheInvalidator
	Deployer  FileDeployer
	Confirmer Confirmer
}

// New returns the installer variant for desc.Kind.
func New(desc *pkgmeta.Descriptor, deps Deps) (Installer, error) {
	reporter := deps.Reporter
	if reporter == nil {
		reporter = ReporterFunc(func(string) {})
	}

	switch desc.Kind {
	case pkgmeta.KindComponent:
		if deps.Imports == nil || deps.Cache == nil {
			return nil, fmt.Errorf("component installer for %s: import service and cache are required", desc.Name)
		}
		return &ComponentInstaller{
			pkg:      desc,
			reporter: reporter,
			imports:  deps.Imports,
			cache:    deps.Cache,
		}, nil
	case pkgmeta.KindModule:
		if deps.Deployer == nil || deps.Confirmer == nil {
			return nil, fmt.Errorf("module installer for %s: deployer and confirmer are required", desc.Name)
		}
		return &ModuleInstaller{
			pkg:       desc,
			reporter:  reporter,
			deployer:  deps.Deployer,
			confirmer: deps.Confirmer,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q for package %s", ErrUnknownKind, desc.Kind, desc.Name)
	}
}
