package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/extinstall/internal/deploy"
	"github.com/danieljhkim/extinstall/internal/fsops"
	"github.com/danieljhkim/extinstall/internal/imports"
	"github.com/danieljhkim/extinstall/internal/manifest"
	"github.com/danieljhkim/extinstall/internal/pkgmeta"
)

type recorder struct {
	messages []string
}

func (r *recorder) Write(message string) {
	r.messages = append(r.messages, message)
}

type scriptedConfirmer struct {
	answer    bool
	questions []string
}

func (c *scriptedConfirmer) Confirm(question string) bool {
	c.questions = append(c.questions, question)
	return c.answer
}

type project struct {
	root      string
	modules   string
	cacheFile string
	store     *manifest.FileStore
	imports   *imports.Service
	cache     *imports.DerivedCache
	deployer  *deploy.Deployer
	reporter  *recorder
	confirmer *scriptedConfirmer
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	fs := fsops.NewRealFS()
	store := manifest.NewFileStore(fs, filepath.Join(root, "var", "configuration", "project.yaml"))
	cacheFile := filepath.Join(root, "var", "generated", "container_cache.php")
	modules := filepath.Join(root, "modules")

	return &project{
		root:      root,
		modules:   modules,
		cacheFile: cacheFile,
		store:     store,
		imports:   imports.NewService(store, fs),
		cache:     imports.NewDerivedCache(fs, cacheFile),
		deployer:  deploy.NewDeployer(fs, modules, "extinstall"),
		reporter:  &recorder{},
		confirmer: &scriptedConfirmer{},
	}
}

func (p *project) deps() Deps {
	return Deps{
		Reporter:  p.reporter,
		Imports:   p.imports,
		Cache:     p.cache,
		Deployer:  p.deployer,
		Confirmer: p.confirmer,
	}
}

// pkg creates a package directory under vendor/ holding files.
func (p *project) pkg(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(p.root, "vendor", filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(dir, 0755))
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func (p *project) writeCache(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p.cacheFile), 0755))
	require.NoError(t, os.WriteFile(p.cacheFile, []byte("<?php return [];"), 0644))
}

func (p *project) manifestPaths(t *testing.T) []string {
	t.Helper()
	m, err := p.store.Load()
	require.NoError(t, err)
	return m.Paths()
}

func newInstaller(t *testing.T, p *project, name string, kind pkgmeta.Kind) Installer {
	t.Helper()
	inst, err := New(&pkgmeta.Descriptor{Name: name, Kind: kind}, p.deps())
	require.NoError(t, err)
	return inst
}

func TestNew(t *testing.T) {
	p := newProject(t)

	t.Run("component", func(t *testing.T) {
		inst, err := New(&pkgmeta.Descriptor{Name: "acme/payments", Kind: pkgmeta.KindComponent}, p.deps())
		require.NoError(t, err)
		assert.IsType(t, &ComponentInstaller{}, inst)
	})

	t.Run("module", func(t *testing.T) {
		inst, err := New(&pkgmeta.Descriptor{Name: "acme/logger", Kind: pkgmeta.KindModule}, p.deps())
		require.NoError(t, err)
		assert.IsType(t, &ModuleInstaller{}, inst)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := New(&pkgmeta.Descriptor{Name: "acme/theme", Kind: pkgmeta.Kind("theme")}, p.deps())
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("component without manifest service", func(t *testing.T) {
		_, err := New(&pkgmeta.Descriptor{Name: "acme/payments", Kind: pkgmeta.KindComponent}, Deps{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("module without deployer", func(t *testing.T) {
		_, err := New(&pkgmeta.Descriptor{Name: "acme/logger", Kind: pkgmeta.KindModule}, Deps{Confirmer: p.confirmer})
		require.Error(t, err)
	})
}

func TestComponentInstall_EmptyManifest(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/payments", nil)
	p.writeCache(t)

	res, err := newInstaller(t, p, "acme/payments", pkgmeta.KindComponent).Install(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, ActionInstalled, res.Action)
	assert.Equal(t, pkgmeta.KindComponent, res.Kind)
	assert.True(t, res.ManifestChanged)
	assert.True(t, res.Completed())
	assert.Equal(t, []string{src}, p.manifestPaths(t))
	assert.NoFileExists(t, p.cacheFile)
	assert.Equal(t, []string{"Installing component acme/payments package."}, p.reporter.messages)
}

func TestComponentInstall_PrunesStaleEntries(t *testing.T) {
	p := newProject(t)
	kept := p.pkg(t, "acme/kept", nil)
	src := p.pkg(t, "acme/payments", nil)

	m := manifest.New()
	m.Add(kept)
	m.Add(filepath.Join(p.root, "vendor", "acme", "removed"))
	require.NoError(t, p.store.Save(m))

	res, err := newInstaller(t, p, "acme/payments", pkgmeta.KindComponent).Install(context.Background(), src)
	require.NoError(t, err)

	assert.True(t, res.ManifestChanged)
	assert.Equal(t, []string{kept, src}, p.manifestPaths(t))
}

func TestComponentUpdate_NoChangeKeepsCache(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/payments", nil)
	inst := newInstaller(t, p, "acme/payments", pkgmeta.KindComponent)

	_, err := inst.Install(context.Background(), src)
	require.NoError(t, err)

	p.writeCache(t)
	res, err := inst.Update(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.False(t, res.ManifestChanged)
	assert.FileExists(t, p.cacheFile)
	assert.Equal(t, []string{src}, p.manifestPaths(t))
	assert.Equal(t, "Updating component acme/payments package.", p.reporter.messages[1])
}

type failingMerger struct {
	removed  []string
	pruneErr error
	addErr   error
}

func (f *failingMerger) RemoveNonExistingImports() ([]string, error) { return f.removed, f.pruneErr }
func (f *failingMerger) AddImport(string) (bool, error)              { return false, f.addErr }

type countingCache struct {
	calls int
	err   error
}

func (c *countingCache) Invalidate() error {
	c.calls++
	return c.err
}

func TestComponentInstall_PropagatesManifestErrors(t *testing.T) {
	p := newProject(t)
	boom := errors.New("disk full")

	tests := []struct {
		name             string
		merger           *failingMerger
		wantInvalidation int
	}{
		{"prune fails", &failingMerger{pruneErr: boom}, 0},
		{"add fails", &failingMerger{addErr: boom}, 0},
		{"add fails after prune wrote", &failingMerger{removed: []string{"/gone"}, addErr: boom}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &countingCache{}
			deps := p.deps()
			deps.Imports = tt.merger
			deps.Cache = cache
			inst, err := New(&pkgmeta.Descriptor{Name: "acme/payments", Kind: pkgmeta.KindComponent}, deps)
			require.NoError(t, err)

			res, err := inst.Install(context.Background(), p.root)
			assert.ErrorIs(t, err, boom)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantInvalidation, cache.calls)
		})
	}
}

func TestComponentInstall_InvalidateError(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/payments", nil)
	cacheErr := errors.New("permission denied")

	deps := p.deps()
	deps.Cache = &countingCache{err: cacheErr}
	inst, err := New(&pkgmeta.Descriptor{Name: "acme/payments", Kind: pkgmeta.KindComponent}, deps)
	require.NoError(t, err)

	res, err := inst.Install(context.Background(), src)
	assert.ErrorIs(t, err, cacheErr)
	assert.Nil(t, res)
	assert.Equal(t, []string{src}, p.manifestPaths(t))
}

func TestModuleInstall_Fresh(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/logger", map[string]string{"metadata.php": "<?php // v1"})

	res, err := newInstaller(t, p, "acme/logger", pkgmeta.KindModule).Install(context.Background(), src)
	require.NoError(t, err)

	target := filepath.Join(p.modules, "acme", "logger")
	assert.Equal(t, ActionInstalled, res.Action)
	assert.Equal(t, target, res.Target)
	assert.FileExists(t, filepath.Join(target, "metadata.php"))
	assert.Equal(t, []string{"Installing module " + src + " package."}, p.reporter.messages)
}

func TestModuleInstall_ConflictAborts(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/logger", map[string]string{"metadata.php": "<?php // v2"})

	target := filepath.Join(p.modules, "acme", "logger")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "metadata.php"), []byte("<?php // local"), 0644))

	res, err := newInstaller(t, p, "acme/logger", pkgmeta.KindModule).Install(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, ActionAborted, res.Action)
	assert.False(t, res.Completed())
	assert.Empty(t, p.confirmer.questions)
	assert.Contains(t, p.reporter.messages, "The directory "+target+" already exists. Aborting.")

	data, err := os.ReadFile(filepath.Join(target, "metadata.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php // local", string(data))
}

func TestModuleInstall_TargetDirectoryOverride(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/logger", map[string]string{"metadata.php": "<?php"})

	desc := &pkgmeta.Descriptor{Name: "acme/logger", Kind: pkgmeta.KindModule}
	desc.SetTargetDirectory("extinstall", "acme/log")
	inst, err := New(desc, p.deps())
	require.NoError(t, err)

	res, err := inst.Install(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.modules, "acme", "log"), res.Target)
}

func TestModuleUpdate_Fresh(t *testing.T) {
	p := newProject(t)
	src := p.pkg(t, "acme/logger", map[string]string{"metadata.php": "<?php"})

	res, err := newInstaller(t, p, "acme/logger", pkgmeta.KindModule).Update(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.Empty(t, p.confirmer.questions)
	assert.Equal(t, []string{"Updating module " + src + " package."}, p.reporter.messages)
}

func TestModuleUpdate_Conflict(t *testing.T) {
	tests := []struct {
		name       string
		answer     bool
		wantAction Action
		wantFile   string
	}{
		{"confirmed overwrites", true, ActionOverwritten, "<?php // v2"},
		{"declined keeps existing files", false, ActionDeclined, "<?php // v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t)
			p.confirmer.answer = tt.answer
			inst := newInstaller(t, p, "acme/logger", pkgmeta.KindModule)

			v1 := p.pkg(t, "v1/acme/logger", map[string]string{"metadata.php": "<?php // v1", "old.php": "<?php"})
			_, err := inst.Install(context.Background(), v1)
			require.NoError(t, err)

			v2 := p.pkg(t, "v2/acme/logger", map[string]string{"metadata.php": "<?php // v2"})
			res, err := inst.Update(context.Background(), v2)
			require.NoError(t, err)

			target := filepath.Join(p.modules, "acme", "logger")
			assert.Equal(t, tt.wantAction, res.Action)
			assert.Equal(t, target, res.Target)

			require.Len(t, p.confirmer.questions, 1)
			assert.Equal(t,
				"All files in the following directories will be overwritten:\n- "+target+"\nDo you want to overwrite them? (y/N) ",
				p.confirmer.questions[0])

			data, err := os.ReadFile(filepath.Join(target, "metadata.php"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, string(data))

			if tt.answer {
				assert.NoFileExists(t, filepath.Join(target, "old.php"))
			} else {
				assert.FileExists(t, filepath.Join(target, "old.php"))
				assert.Contains(t, p.reporter.messages[len(p.reporter.messages)-1], "Skipped "+target)
			}
		})
	}
}

func TestModuleInstall_SourceMissing(t *testing.T) {
	p := newProject(t)

	_, err := newInstaller(t, p, "acme/logger", pkgmeta.KindModule).Install(context.Background(), filepath.Join(p.root, "missing"))
	assert.ErrorIs(t, err, deploy.ErrSourceNotFound)
}
