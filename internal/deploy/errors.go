package deploy

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict indicates the destination directory already exists.
	ErrConflict = errors.New("conflict detected")

	// ErrSourceNotFound indicates the package source directory is missing.
	ErrSourceNotFound = errors.New("source not found")

	// ErrInvalidTarget indicates the resolved target directory is unsafe.
	ErrInvalidTarget = errors.New("invalid target directory")
)

// ConflictError describes a destination that blocks a plain copy.
// errors.Is(err, ErrConflict) matches it.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("directory %s already exists", e.Path)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// IOError wraps a filesystem failure during deployment.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
