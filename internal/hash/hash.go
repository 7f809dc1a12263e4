// Package hash provides content hashing for deployed module trees.
//
// extinstall compares the digest of a package source with the digest of
// its deployed copy to report drift (local edits or a stale deployment).
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// Hasher provides an abstraction for hashing operations.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)

	// HashTree computes a hash over every regular file below root,
	// covering both relative paths and contents.
	HashTree(root string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashTree computes the SHA-256 digest of a directory tree. Files are
// visited in sorted order so the result is independent of walk order.
// Symlinks are followed the same way fsops copies a tree, so a deployed
// copy hashes equal to its source.
func (h *SHA256Hasher) HashTree(root string) (string, error) {
	var files []string
	if err := collectFiles(root, "", &files); err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)

	tree := sha256.New()
	for _, rel := range files {
		sum, err := h.HashFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", rel, err)
		}
		fmt.Fprintf(tree, "%s\x00%s\n", rel, sum)
	}

	return hex.EncodeToString(tree.Sum(nil)), nil
}

// collectFiles appends the slash path of every file below dir, relative to
// the tree root, to files.
func collectFiles(dir, rel string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		entryRel := path.Join(rel, entry.Name())

		info, err := os.Stat(full)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", full, err)
		}
		if info.IsDir() {
			if err := collectFiles(full, entryRel, files); err != nil {
				return err
			}
			continue
		}
		*files = append(*files, entryRel)
	}
	return nil
}
