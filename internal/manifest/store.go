package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/extinstall/internal/fsops"
)

// StorageReadError reports a manifest that could not be read or parsed.
type StorageReadError struct {
	Path string
	Err  error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("failed to read import manifest %s: %v", e.Path, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError reports a manifest that could not be persisted.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write import manifest %s: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// Store provides an interface for persisting the import manifest.
type Store interface {
	// Load reads the manifest. A missing file yields an empty manifest.
	Load() (*Manifest, error)

	// Save replaces the persisted manifest atomically.
	Save(m *Manifest) error

	// Location returns the manifest file path.
	Location() string
}

// FileStore implements Store as a YAML file on disk.
// Nothing is cached between calls.
type FileStore struct {
	fs   fsops.FS
	path string
}

// NewFileStore creates a new FileStore for the manifest at path.
func NewFileStore(fs fsops.FS, path string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
	}
}

func (s *FileStore) Location() string {
	return s.path
}

// Load reads the manifest from disk.
func (s *FileStore) Load() (*Manifest, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, &StorageReadError{Path: s.path, Err: err}
	}

	m := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, &StorageReadError{Path: s.path, Err: err}
	}
	if m.Imports == nil {
		m.Imports = []Import{}
	}

	return m, nil
}

// Save writes the manifest atomically.
func (s *FileStore) Save(m *Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return &StorageWriteError{Path: s.path, Err: fmt.Errorf("failed to marshal manifest: %w", err)}
	}
	if err := enc.Close(); err != nil {
		return &StorageWriteError{Path: s.path, Err: err}
	}

	if err := s.fs.AtomicWrite(s.path, buf.Bytes(), 0644); err != nil {
		return &StorageWriteError{Path: s.path, Err: err}
	}

	return nil
}
