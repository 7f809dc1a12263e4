package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	s, used, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_ProjectFile(t *testing.T) {
	root := t.TempDir()
	content := "modules_dir: source/modules\nextra_namespace: oxideshop\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	s, used, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ConfigFileName), used)
	assert.Equal(t, "source/modules", s.ModulesDir)
	assert.Equal(t, "oxideshop", s.ExtraNamespace)
	assert.Equal(t, DefaultSettings().ImportManifest, s.ImportManifest, "unset keys keep defaults")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("modules_dir: from-file\n"), 0644))
	t.Setenv("EXTINSTALL_MODULES_DIR", "from-env")

	s, _, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)

	assert.Equal(t, "from-env", s.ModulesDir)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("container_cache: tmp/container.php\n"), 0644))

	s, used, err := Load(LoadOptions{Root: t.TempDir(), ConfigFile: cfg})
	require.NoError(t, err)

	assert.Equal(t, cfg, used)
	assert.Equal(t, "tmp/container.php", s.ContainerCache)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, _, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file not found")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("modules_dir: [unclosed\n"), 0644))

		_, _, err := Load(LoadOptions{Root: root})
		require.Error(t, err)
	})

	t.Run("empty value fails validation", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("extra_namespace: \"\"\n"), 0644))

		_, _, err := Load(LoadOptions{Root: root})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extra_namespace is required")
	})
}
