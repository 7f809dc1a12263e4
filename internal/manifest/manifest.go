// Package manifest persists the project's configuration-import manifest.
//
// The manifest is a YAML document whose "imports" key holds an ordered list
// of import entries:
//
//	imports:
//	  - resource: /srv/shop/vendor/acme/payments
//	  - resource: vendor/acme/search
//
// Entry order is the load order of the consuming application and is kept
// exactly as inserted. Other top-level keys are carried through rewrites
// untouched.
package manifest

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Import is one configuration-import entry.
type Import struct {
	Resource string `yaml:"resource"`
}

// UnmarshalYAML accepts both the mapping form and a bare path scalar.
func (i *Import) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		i.Resource = node.Value
		return nil
	}

	type plain Import
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Resource == "" {
		return fmt.Errorf("line %d: import entry without resource", node.Line)
	}
	*i = Import(p)
	return nil
}

// Manifest is the ordered, deduplicated list of imports plus any unrelated
// top-level keys of the same file.
type Manifest struct {
	Imports []Import       `yaml:"imports"`
	Other   map[string]any `yaml:",inline"`
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{Imports: []Import{}}
}

// NormalizePath returns the identity used to compare import entries.
func NormalizePath(p string) string {
	return filepath.Clean(p)
}

// Paths returns the entry paths in order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Imports))
	for _, imp := range m.Imports {
		paths = append(paths, imp.Resource)
	}
	return paths
}

// Contains reports whether an entry equal to path (after normalization) exists.
func (m *Manifest) Contains(path string) bool {
	want := NormalizePath(path)
	for _, imp := range m.Imports {
		if NormalizePath(imp.Resource) == want {
			return true
		}
	}
	return false
}

// Add appends path unless it is already present. It reports whether the
// manifest changed.
func (m *Manifest) Add(path string) bool {
	if m.Contains(path) {
		return false
	}
	m.Imports = append(m.Imports, Import{Resource: NormalizePath(path)})
	return true
}

// Retain keeps only the entries for which keep returns true, preserving
// order, and returns the removed entry paths.
func (m *Manifest) Retain(keep func(path string) (bool, error)) ([]string, error) {
	kept := make([]Import, 0, len(m.Imports))
	var removed []string
	for _, imp := range m.Imports {
		ok, err := keep(imp.Resource)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, imp)
		} else {
			removed = append(removed, imp.Resource)
		}
	}
	m.Imports = kept
	return removed, nil
}
