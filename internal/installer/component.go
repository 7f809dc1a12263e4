package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/extinstall/internal/pkgmeta"
)

// ComponentInstaller registers a component package in the import manifest.
type ComponentInstaller struct {
	pkg      *pkgmeta.Descriptor
	reporter Reporter
	imports  ImportMerger
	cache    CacheInvalidator
}

func (c *ComponentInstaller) Install(ctx context.Context, packagePath string) (*Result, error) {
	c.reporter.Write(fmt.Sprintf("Installing component %s package.", c.pkg.Name))
	return c.importServiceFile(ctx, packagePath, ActionInstalled)
}

func (c *ComponentInstaller) Update(ctx context.Context, packagePath string) (*Result, error) {
	c.reporter.Write(fmt.Sprintf("Updating component %s package.", c.pkg.Name))
	return c.importServiceFile(ctx, packagePath, ActionUpdated)
}

// importServiceFile prunes stale entries before adding packagePath, so a
// moved or reinstalled component never leaves an orphan behind. The cache
// is invalidated whenever the manifest was written, even if a later step
// fails.
func (c *ComponentInstaller) importServiceFile(ctx context.Context, packagePath string, action Action) (result *Result, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var changed bool
	defer func() {
		if !changed {
			return
		}
		if cacheErr := c.cache.Invalidate(); cacheErr != nil {
			result = nil
			err = errors.Join(err, fmt.Errorf("failed to invalidate container cache: %w", cacheErr))
		}
	}()

	removed, err := c.imports.RemoveNonExistingImports()
	if err != nil {
		return nil, fmt.Errorf("failed to prune imports: %w", err)
	}
	changed = len(removed) > 0

	added, err := c.imports.AddImport(packagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to add import: %w", err)
	}
	changed = changed || added

	return &Result{
		Package:         c.pkg.Name,
		Kind:            pkgmeta.KindComponent,
		Action:          action,
		Import:          packagePath,
		ManifestChanged: changed,
	}, nil
}
