// Package deploy copies module package trees into the project's modules
// directory.
//
// Copy never touches an existing destination: it fails with a ConflictError
// instead. ForceCopy replaces the destination. Both build the new tree in a
// staging directory next to the destination and move it into place with a
// rename, so a failed deployment leaves the destination as it was.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/extinstall/internal/fsops"
	"github.com/danieljhkim/extinstall/internal/logging"
	"github.com/danieljhkim/extinstall/internal/pkgmeta"
)

const stagePattern = ".extinstall-stage-*"

// Deployer deploys module packages below a modules directory.
type Deployer struct {
	fs         fsops.FS
	modulesDir string
	namespace  string
	logger     zerolog.Logger
}

// NewDeployer creates a new Deployer. namespace is the extra-metadata key
// holding the target-directory override.
func NewDeployer(fs fsops.FS, modulesDir, namespace string) *Deployer {
	return &Deployer{
		fs:         fs,
		modulesDir: modulesDir,
		namespace:  namespace,
		logger:     logging.GetLogger("deploy"),
	}
}

// TargetPath returns <modulesDir>/<target-directory override or package name>.
func (d *Deployer) TargetPath(desc *pkgmeta.Descriptor) (string, error) {
	name := desc.TargetDirectory(d.namespace)
	if name == "" {
		name = desc.Name
	}
	if err := d.fs.ValidateRelPath(name); err != nil {
		return "", fmt.Errorf("%w for package %s: %v", ErrInvalidTarget, desc.Name, err)
	}
	return filepath.Join(d.modulesDir, name), nil
}

// IsInstalled reports whether the package's target directory exists.
func (d *Deployer) IsInstalled(desc *pkgmeta.Descriptor) (bool, error) {
	target, err := d.TargetPath(desc)
	if err != nil {
		return false, err
	}
	exists, err := d.fs.Exists(target)
	if err != nil {
		return false, &IOError{Op: "check", Path: target, Err: err}
	}
	return exists, nil
}

// Copy deploys sourcePath to the package's target path.
// It returns a *ConflictError without modifying anything if the target exists.
func (d *Deployer) Copy(ctx context.Context, desc *pkgmeta.Descriptor, sourcePath string) (string, error) {
	return d.deploy(ctx, desc, sourcePath, false)
}

// ForceCopy deploys sourcePath to the package's target path, replacing any
// existing directory there.
func (d *Deployer) ForceCopy(ctx context.Context, desc *pkgmeta.Descriptor, sourcePath string) (string, error) {
	return d.deploy(ctx, desc, sourcePath, true)
}

func (d *Deployer) deploy(ctx context.Context, desc *pkgmeta.Descriptor, sourcePath string, force bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := d.TargetPath(desc)
	if err != nil {
		return "", err
	}

	if err := d.checkSource(sourcePath); err != nil {
		return "", err
	}

	exists, err := d.fs.Exists(target)
	if err != nil {
		return "", &IOError{Op: "check", Path: target, Err: err}
	}
	if exists && !force {
		d.logger.Debug().Str("target", target).Msg("Target directory already exists")
		return target, &ConflictError{Path: target}
	}

	parent := filepath.Dir(target)
	if err := d.fs.MkdirAll(parent, 0755); err != nil {
		return "", &IOError{Op: "create", Path: parent, Err: err}
	}

	stageRoot, err := d.fs.MkdirTemp(parent, stagePattern)
	if err != nil {
		return "", &IOError{Op: "stage", Path: parent, Err: err}
	}
	defer func() {
		_ = d.fs.RemoveAll(stageRoot)
	}()

	staged := filepath.Join(stageRoot, "tree")
	if err := d.fs.Copy(sourcePath, staged); err != nil {
		return "", &IOError{Op: "copy", Path: sourcePath, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if exists {
		if err := d.swap(staged, target, filepath.Join(stageRoot, "previous")); err != nil {
			return "", err
		}
		d.logger.Info().Str("source", sourcePath).Str("target", target).Msg("Replaced module files")
		return target, nil
	}

	if err := d.fs.Rename(staged, target); err != nil {
		return "", &IOError{Op: "move", Path: target, Err: err}
	}
	d.logger.Info().Str("source", sourcePath).Str("target", target).Msg("Copied module files")
	return target, nil
}

// swap moves target aside to backup, then staged into target. The old tree
// is put back if the second move fails.
func (d *Deployer) swap(staged, target, backup string) error {
	if err := d.fs.Rename(target, backup); err != nil {
		return &IOError{Op: "move aside", Path: target, Err: err}
	}

	if err := d.fs.Rename(staged, target); err != nil {
		if restoreErr := d.fs.Rename(backup, target); restoreErr != nil {
			d.logger.Error().Err(restoreErr).Str("target", target).Str("backup", backup).
				Msg("Failed to restore previous module files")
			return &IOError{Op: "restore", Path: target, Err: errors.Join(err, restoreErr)}
		}
		return &IOError{Op: "move", Path: target, Err: err}
	}

	return nil
}

func (d *Deployer) checkSource(sourcePath string) error {
	info, err := d.fs.Stat(sourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath)
		}
		return &IOError{Op: "stat", Path: sourcePath, Err: err}
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, sourcePath)
	}
	return nil
}
