package integration

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/extinstall/internal/config"
	"github.com/danieljhkim/extinstall/internal/deploy"
	"github.com/danieljhkim/extinstall/internal/fsops"
	"github.com/danieljhkim/extinstall/internal/imports"
	"github.com/danieljhkim/extinstall/internal/installer"
	"github.com/danieljhkim/extinstall/internal/manifest"
	"github.com/danieljhkim/extinstall/internal/pkgmeta"
	"github.com/danieljhkim/extinstall/internal/prompt"
)

// testProject is a project tree on disk with every collaborator wired the
// way the CLI wires them, except that terminal input is scripted.
type testProject struct {
	paths    *config.Paths
	settings *config.Settings
	store    *manifest.FileStore
	imports  *imports.Service
	cache    *imports.DerivedCache
	deployer *deploy.Deployer
	messages []string
	answers  []string
	asked    []string
}

func setupTestProject(t *testing.T) *testProject {
	t.Helper()

	settings := config.DefaultSettings()
	paths := config.NewPaths(t.TempDir(), settings)
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}

	realFS := fsops.NewRealFS()
	store := manifest.NewFileStore(realFS, paths.ImportManifest)

	return &testProject{
		paths:    paths,
		settings: settings,
		store:    store,
		imports:  imports.NewService(store, realFS),
		cache:    imports.NewDerivedCache(realFS, paths.ContainerCache),
		deployer: deploy.NewDeployer(realFS, paths.Modules, settings.ExtraNamespace),
	}
}

// Ask implements prompt.Asker by popping the next scripted answer.
func (p *testProject) Ask(question, defaultAnswer string) (string, error) {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return defaultAnswer, nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *testProject) newInstaller(t *testing.T, desc *pkgmeta.Descriptor) installer.Installer {
	t.Helper()
	inst, err := installer.New(desc, installer.Deps{
		Reporter: installer.ReporterFunc(func(message string) {
			p.messages = append(p.messages, message)
		}),
		Imports:   p.imports,
		Cache:     p.cache,
		Deployer:  p.deployer,
		Confirmer: prompt.NewConfirmer(p),
	})
	if err != nil {
		t.Fatalf("installer.New() error = %v", err)
	}
	return inst
}

func (p *testProject) install(t *testing.T, desc *pkgmeta.Descriptor) *installer.Result {
	t.Helper()
	result, err := p.newInstaller(t, desc).Install(context.Background(), desc.Path)
	if err != nil {
		t.Fatalf("Install(%s) error = %v", desc.Name, err)
	}
	return result
}

func (p *testProject) update(t *testing.T, desc *pkgmeta.Descriptor) *installer.Result {
	t.Helper()
	result, err := p.newInstaller(t, desc).Update(context.Background(), desc.Path)
	if err != nil {
		t.Fatalf("Update(%s) error = %v", desc.Name, err)
	}
	return result
}

// writePackage extracts a package with a composer.json into vendor/<dir>
// and loads its descriptor.
func (p *testProject) writePackage(t *testing.T, dir, composerJSON string, files map[string]string) *pkgmeta.Descriptor {
	t.Helper()
	root := filepath.Join(p.paths.Root, "vendor", filepath.FromSlash(dir))
	writeFiles(t, root, files)
	writeFiles(t, root, map[string]string{pkgmeta.MetadataFile: composerJSON})

	desc, err := pkgmeta.Load(root)
	if err != nil {
		t.Fatalf("pkgmeta.Load() error = %v", err)
	}
	if err := desc.Validate(); err != nil {
		t.Fatalf("descriptor for %s is invalid: %v", dir, err)
	}
	return desc
}

func (p *testProject) manifestPaths(t *testing.T) []string {
	t.Helper()
	m, err := p.store.Load()
	if err != nil {
		t.Fatalf("failed to load manifest: %v", err)
	}
	return m.Paths()
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// readFiles returns every regular file below root keyed by slash path.
func readFiles(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to read %s: %v", root, err)
	}
	return files
}

func containsMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
