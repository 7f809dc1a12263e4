// Package imports maintains the project's configuration-import manifest.
//
// The two write operations are designed to run back to back on every
// component install or update:
//
//	RemoveNonExistingImports()  // drop entries whose source is gone
//	AddImport(packagePath)      // append the package if not yet listed
//
// Running that pair repeatedly converges on one entry per existing component.
// Both report what they wrote; whenever the manifest changed callers run
// DerivedCache.Invalidate so the host application rebuilds its container.
package imports

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/extinstall/internal/fsops"
	"github.com/danieljhkim/extinstall/internal/logging"
	"github.com/danieljhkim/extinstall/internal/manifest"
)

// Service is the merge logic on top of a manifest.Store.
type Service struct {
	store  manifest.Store
	fs     fsops.FS
	logger zerolog.Logger
}

// NewService creates a new Service.
func NewService(store manifest.Store, fs fsops.FS) *Service {
	return &Service{
		store:  store,
		fs:     fs,
		logger: logging.GetLogger("imports"),
	}
}

// Imports returns the current entries in order.
func (s *Service) Imports() ([]string, error) {
	m, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return m.Paths(), nil
}

// RemoveNonExistingImports drops every entry whose path does not exist on
// disk. Relative entries are resolved against the manifest's directory.
// It returns the removed entries in manifest order; the manifest is only
// written when that list is non-empty.
func (s *Service) RemoveNonExistingImports() ([]string, error) {
	m, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	removed, err := m.Retain(func(entry string) (bool, error) {
		exists, err := s.fs.Exists(s.resolve(entry))
		if err != nil {
			return false, fmt.Errorf("failed to check import %s: %w", entry, err)
		}
		return exists, nil
	})
	if err != nil {
		return nil, err
	}

	if len(removed) == 0 {
		return nil, nil
	}

	for _, entry := range removed {
		s.logger.Info().Str("import", entry).Msg("Removing stale import")
	}

	if err := s.store.Save(m); err != nil {
		return nil, err
	}
	return removed, nil
}

// AddImport appends path unless an equal entry is already listed.
// No write happens when the entry exists.
func (s *Service) AddImport(path string) (bool, error) {
	m, err := s.store.Load()
	if err != nil {
		return false, err
	}

	if !m.Add(path) {
		s.logger.Debug().Str("import", path).Msg("Import already present")
		return false, nil
	}

	if err := s.store.Save(m); err != nil {
		return false, err
	}

	s.logger.Info().Str("import", path).Msg("Added import")
	return true, nil
}

func (s *Service) resolve(entry string) string {
	if filepath.IsAbs(entry) {
		return entry
	}
	return filepath.Join(filepath.Dir(s.store.Location()), entry)
}
