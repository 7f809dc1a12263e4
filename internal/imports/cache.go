package imports

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/extinstall/internal/fsops"
	"github.com/danieljhkim/extinstall/internal/logging"
)

// DerivedCache is the host application's container cache, built from the
// import manifest at bootstrap. It is deleted, never rewritten.
type DerivedCache struct {
	fs     fsops.FS
	path   string
	logger zerolog.Logger
}

// NewDerivedCache creates a DerivedCache for the cache file at path.
func NewDerivedCache(fs fsops.FS, path string) *DerivedCache {
	return &DerivedCache{
		fs:     fs,
		path:   path,
		logger: logging.GetLogger("cache"),
	}
}

// Invalidate deletes the cache file if it exists.
func (c *DerivedCache) Invalidate() error {
	exists, err := c.fs.Exists(c.path)
	if err != nil {
		return fmt.Errorf("failed to check container cache: %w", err)
	}
	if !exists {
		return nil
	}

	if err := c.fs.Remove(c.path); err != nil {
		return fmt.Errorf("failed to delete container cache %s: %w", c.path, err)
	}

	c.logger.Info().Str("path", c.path).Msg("Invalidated container cache")
	return nil
}
