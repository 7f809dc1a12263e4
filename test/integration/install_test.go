package integration

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danieljhkim/extinstall/internal/installer"
)

const (
	paymentsComposer = `{"name": "acme/payments", "type": "oxideshop-component"}`
	shippingComposer = `{"name": "acme/shipping", "type": "oxideshop-component"}`
	loggerComposer   = `{
  "name": "acme/logger",
  "type": "oxideshop-module",
  "extra": {"extinstall": {"target-directory": "acme/log"}}
}`
)

func TestComponentInstall_FreshProject(t *testing.T) {
	p := setupTestProject(t)
	payments := p.writePackage(t, "acme/payments", paymentsComposer, nil)

	result := p.install(t, payments)

	if result.Action != installer.ActionInstalled {
		t.Errorf("expected action %q, got %q", installer.ActionInstalled, result.Action)
	}
	if got := p.manifestPaths(t); !reflect.DeepEqual(got, []string{payments.Path}) {
		t.Errorf("expected manifest [%s], got %v", payments.Path, got)
	}
}

func TestComponentInstall_PrunesDeletedPackage(t *testing.T) {
	p := setupTestProject(t)
	payments := p.writePackage(t, "acme/payments", paymentsComposer, nil)
	shipping := p.writePackage(t, "acme/shipping", shippingComposer, nil)

	p.install(t, payments)
	if err := os.RemoveAll(payments.Path); err != nil {
		t.Fatalf("failed to remove package: %v", err)
	}

	writeFiles(t, filepath.Dir(p.paths.ContainerCache), map[string]string{
		filepath.Base(p.paths.ContainerCache): "<?php return [];",
	})

	result := p.install(t, shipping)

	if got := p.manifestPaths(t); !reflect.DeepEqual(got, []string{shipping.Path}) {
		t.Errorf("expected manifest [%s], got %v", shipping.Path, got)
	}
	if !result.ManifestChanged {
		t.Error("expected manifest change to be reported")
	}
	if _, err := os.Stat(p.paths.ContainerCache); !os.IsNotExist(err) {
		t.Errorf("expected container cache to be deleted, stat error = %v", err)
	}
}

func TestComponentUpdate_MatchesInstall(t *testing.T) {
	p := setupTestProject(t)
	payments := p.writePackage(t, "acme/payments", paymentsComposer, nil)
	shipping := p.writePackage(t, "acme/shipping", shippingComposer, nil)

	p.update(t, payments)
	p.update(t, shipping)
	result := p.update(t, payments)

	if result.ManifestChanged {
		t.Error("expected re-running update to leave the manifest alone")
	}
	want := []string{payments.Path, shipping.Path}
	if got := p.manifestPaths(t); !reflect.DeepEqual(got, want) {
		t.Errorf("expected manifest %v, got %v", want, got)
	}
	if len(p.asked) != 0 {
		t.Errorf("component updates must not ask questions, asked %v", p.asked)
	}
}

func TestModule_ConflictLifecycle(t *testing.T) {
	p := setupTestProject(t)
	logger := p.writePackage(t, "acme/logger", loggerComposer, map[string]string{
		"metadata.php":       "<?php // v2",
		"src/Logger.php":     "<?php class Logger {}",
		"views/admin/en.php": "<?php return [];",
	})

	target := filepath.Join(p.paths.Modules, "acme", "log")
	existing := map[string]string{
		"metadata.php":   "<?php // v1",
		"legacy.php":     "<?php",
		"src/Logger.php": "<?php class OldLogger {}",
	}
	writeFiles(t, target, existing)

	// install fails closed
	result := p.install(t, logger)
	if result.Action != installer.ActionAborted {
		t.Fatalf("expected install to abort, got %q", result.Action)
	}
	if !containsMessage(p.messages, "The directory "+target+" already exists. Aborting.") {
		t.Errorf("expected abort message, got %v", p.messages)
	}
	if got := readFiles(t, target); !reflect.DeepEqual(got, existing) {
		t.Errorf("install modified the existing directory: %v", got)
	}
	if len(p.asked) != 0 {
		t.Errorf("install must not ask, asked %v", p.asked)
	}

	// update declined
	p.answers = []string{"n"}
	result = p.update(t, logger)
	if result.Action != installer.ActionDeclined {
		t.Fatalf("expected update to be declined, got %q", result.Action)
	}
	if got := readFiles(t, target); !reflect.DeepEqual(got, existing) {
		t.Errorf("declined update modified the existing directory: %v", got)
	}

	// update confirmed
	p.answers = []string{"y"}
	result = p.update(t, logger)
	if result.Action != installer.ActionOverwritten {
		t.Fatalf("expected update to overwrite, got %q", result.Action)
	}

	want := readFiles(t, logger.Path)
	if got := readFiles(t, target); !reflect.DeepEqual(got, want) {
		t.Errorf("expected target to equal the package source\n got: %v\nwant: %v", got, want)
	}

	wantQuestion := "All files in the following directories will be overwritten:\n- " + target + "\nDo you want to overwrite them? (y/N) "
	if len(p.asked) != 2 || p.asked[0] != wantQuestion || p.asked[1] != wantQuestion {
		t.Errorf("unexpected questions: %q", p.asked)
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatalf("failed to list modules: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "log" {
		t.Errorf("expected only the module directory to remain, got %v", entries)
	}
}

func TestModuleUpdate_FreshTargetDoesNotAsk(t *testing.T) {
	p := setupTestProject(t)
	logger := p.writePackage(t, "acme/logger", loggerComposer, map[string]string{"metadata.php": "<?php"})

	result := p.update(t, logger)

	if result.Action != installer.ActionUpdated {
		t.Errorf("expected action %q, got %q", installer.ActionUpdated, result.Action)
	}
	if len(p.asked) != 0 {
		t.Errorf("expected no questions, got %v", p.asked)
	}
}
