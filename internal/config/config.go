package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the project-local settings file looked up in the root.
	ConfigFileName = ".extinstall.yaml"

	// EnvPrefix prefixes environment overrides, e.g. EXTINSTALL_MODULES_DIR.
	EnvPrefix = "EXTINSTALL"
)

// Settings holds the tunable locations and keys of a project.
type Settings struct {
	// ModulesDir is where module packages are deployed (relative to root)
	ModulesDir string `mapstructure:"modules_dir"`

	// ImportManifest is the configuration-import manifest file
	ImportManifest string `mapstructure:"import_manifest"`

	// ContainerCache is the host's derived container cache file
	ContainerCache string `mapstructure:"container_cache"`

	// ExtraNamespace is the key in a package's extra metadata that holds
	// extinstall options such as target-directory
	ExtraNamespace string `mapstructure:"extra_namespace"`
}

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// Root is the project root; ConfigFileName is looked up there
	Root string

	// ConfigFile, when set, is used exclusively and must exist
	ConfigFile string
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() *Settings {
	return &Settings{
		ModulesDir:     "modules",
		ImportManifest: filepath.Join("var", "configuration", "project.yaml"),
		ContainerCache: filepath.Join("var", "generated", "container_cache.php"),
		ExtraNamespace: "extinstall",
	}
}

// Load reads settings from defaults, the project config file and the
// environment, in increasing priority. It returns the config file used,
// or "" when none was found.
func Load(opts LoadOptions) (*Settings, string, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("modules_dir", defaults.ModulesDir)
	v.SetDefault("import_manifest", defaults.ImportManifest)
	v.SetDefault("container_cache", defaults.ContainerCache)
	v.SetDefault("extra_namespace", defaults.ExtraNamespace)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, "", fmt.Errorf("config file not found: %s: %w", opts.ConfigFile, err)
		}
		resolvedPath = opts.ConfigFile
	} else if opts.Root != "" {
		local := filepath.Join(opts.Root, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			resolvedPath = local
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", resolvedPath, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}

	return &s, resolvedPath, nil
}

// Validate checks the settings for errors.
func (s *Settings) Validate() error {
	if s.ModulesDir == "" {
		return fmt.Errorf("modules_dir is required")
	}
	if s.ImportManifest == "" {
		return fmt.Errorf("import_manifest is required")
	}
	if s.ContainerCache == "" {
		return fmt.Errorf("container_cache is required")
	}
	if s.ExtraNamespace == "" {
		return fmt.Errorf("extra_namespace is required")
	}
	return nil
}
