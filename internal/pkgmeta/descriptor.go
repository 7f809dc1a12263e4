// Package pkgmeta describes the extension packages handed over by the host
// package manager.
//
// A Descriptor is read-only: it is built once per install/update call, either
// from command-line values or from the package's composer.json, and never
// mutated by the deployment code.
package pkgmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MetadataFile is the package metadata file read from a package directory.
const MetadataFile = "composer.json"

// TargetDirectoryKey is the extra option overriding a module's target directory.
const TargetDirectoryKey = "target-directory"

// ErrInvalidDescriptor indicates the package metadata is unusable.
var ErrInvalidDescriptor = errors.New("invalid package descriptor")

// Kind selects which installer handles a package.
type Kind string

const (
	KindUnknown   Kind = ""
	KindComponent Kind = "component"
	KindModule    Kind = "module"
)

// ParseKind converts a --kind flag value or a package type into a Kind.
// Package types are matched by suffix so vendor prefixes such as
// "oxideshop-module" resolve as well.
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == string(KindComponent) || strings.HasSuffix(v, "-"+string(KindComponent)):
		return KindComponent, nil
	case v == string(KindModule) || strings.HasSuffix(v, "-"+string(KindModule)):
		return KindModule, nil
	default:
		return KindUnknown, fmt.Errorf("%w: unknown package kind %q", ErrInvalidDescriptor, s)
	}
}

// Descriptor identifies one package being installed or updated.
type Descriptor struct {
	// Name is the package name, e.g. "acme/payments"
	Name string

	// Kind is the installer variant handling the package
	Kind Kind

	// Path is the directory the host extracted the package to
	Path string

	// Extra is the free-form extra metadata of the package
	Extra map[string]any
}

// TargetDirectory returns the target-directory override stored under the
// given extra namespace, or "" when none is set.
func (d *Descriptor) TargetDirectory(namespace string) string {
	if d.Extra == nil {
		return ""
	}
	section, ok := d.Extra[namespace].(map[string]any)
	if !ok {
		return ""
	}
	target, _ := section[TargetDirectoryKey].(string)
	return strings.TrimSpace(target)
}

// SetTargetDirectory records a target-directory override under namespace.
// Used when the override comes from the command line rather than metadata.
func (d *Descriptor) SetTargetDirectory(namespace, target string) {
	if d.Extra == nil {
		d.Extra = make(map[string]any)
	}
	section, ok := d.Extra[namespace].(map[string]any)
	if !ok {
		section = make(map[string]any)
		d.Extra[namespace] = section
	}
	section[TargetDirectoryKey] = target
}

// Validate checks the descriptor has what the installers need.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: package name is required", ErrInvalidDescriptor)
	}
	if d.Path == "" {
		return fmt.Errorf("%w: package path is required", ErrInvalidDescriptor)
	}
	if d.Kind != KindComponent && d.Kind != KindModule {
		return fmt.Errorf("%w: unknown package kind %q", ErrInvalidDescriptor, d.Kind)
	}
	return nil
}

// composerFile is the subset of composer.json extinstall reads.
type composerFile struct {
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Extra map[string]any `json:"extra"`
}

// Load reads the descriptor of the package extracted at path.
// A missing metadata file yields a descriptor carrying only the path, so
// callers can fill name and kind from flags.
func Load(path string) (*Descriptor, error) {
	desc := &Descriptor{Path: path}

	data, err := os.ReadFile(filepath.Join(path, MetadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return desc, nil
		}
		return nil, fmt.Errorf("failed to read package metadata: %w", err)
	}

	var meta composerFile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidDescriptor, MetadataFile, err)
	}

	desc.Name = meta.Name
	desc.Extra = meta.Extra
	if meta.Type != "" {
		// Unrelated package types (e.g. "library") leave the kind for flags to decide.
		if kind, err := ParseKind(meta.Type); err == nil {
			desc.Kind = kind
		}
	}

	return desc, nil
}
