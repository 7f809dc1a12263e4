package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/extinstall/internal/deploy"
	"github.com/danieljhkim/extinstall/internal/pkgmeta"
)

// ModuleInstaller deploys a module package's files.
type ModuleInstaller struct {
	pkg       *pkgmeta.Descriptor
	reporter  Reporter
	deployer  FileDeployer
	confirmer Confirmer
}

// Install copies the package files. An occupied target is reported and the
// install stops; it is never overwritten here.
func (m *ModuleInstaller) Install(ctx context.Context, packagePath string) (*Result, error) {
	m.reporter.Write(fmt.Sprintf("Installing module %s package.", packagePath))

	target, err := m.deployer.Copy(ctx, m.pkg, packagePath)
	if err != nil {
		var conflict *deploy.ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		m.reporter.Write(fmt.Sprintf("The directory %s already exists. Aborting.", conflict.Path))
		return m.result(ActionAborted, conflict.Path), nil
	}

	return m.result(ActionInstalled, target), nil
}

// Update copies the package files, asking before an occupied target is
// replaced.
func (m *ModuleInstaller) Update(ctx context.Context, packagePath string) (*Result, error) {
	m.reporter.Write(fmt.Sprintf("Updating module %s package.", packagePath))

	target, err := m.deployer.Copy(ctx, m.pkg, packagePath)
	if err == nil {
		return m.result(ActionUpdated, target), nil
	}

	var conflict *deploy.ConflictError
	if !errors.As(err, &conflict) {
		return nil, err
	}

	if !m.confirmer.Confirm(overwriteQuestion(conflict.Path)) {
		m.reporter.Write(fmt.Sprintf("Skipped %s.", conflict.Path))
		return m.result(ActionDeclined, conflict.Path), nil
	}

	target, err = m.deployer.ForceCopy(ctx, m.pkg, packagePath)
	if err != nil {
		return nil, err
	}
	return m.result(ActionOverwritten, target), nil
}

func (m *ModuleInstaller) result(action Action, target string) *Result {
	return &Result{
		Package: m.pkg.Name,
		Kind:    pkgmeta.KindModule,
		Action:  action,
		Target:  target,
	}
}

func overwriteQuestion(dir string) string {
	return "All files in the following directories will be overwritten:\n" +
		"- " + dir + "\n" +
		"Do you want to overwrite them? (y/N) "
}
