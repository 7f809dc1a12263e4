package installer

import "github.com/danieljhkim/extinstall/internal/pkgmeta"

// Action is what an install or update ended up doing.
type Action string

const (
	// ActionInstalled means a fresh install completed.
	ActionInstalled Action = "installed"

	// ActionUpdated means an update completed without overwriting anything.
	ActionUpdated Action = "updated"

	// ActionOverwritten means an update replaced an existing target after confirmation.
	ActionOverwritten Action = "overwritten"

	// ActionAborted means an install found its target occupied and stopped.
	ActionAborted Action = "aborted"

	// ActionDeclined means the operator refused to overwrite the target.
	ActionDeclined Action = "declined"
)

// Result describes the outcome of one Install or Update call.
type Result struct {
	Package string       `json:"package"`
	Kind    pkgmeta.Kind `json:"kind"`
	Action  Action       `json:"action"`

	// Target is the deployed module directory (module packages only)
	Target string `json:"target,omitempty"`

	// Import is the manifest entry registered (component packages only)
	Import string `json:"import,omitempty"`

	// ManifestChanged is set when the import manifest was rewritten
	ManifestChanged bool `json:"manifestChanged,omitempty"`
}

// Completed reports whether the package's files or imports are in place.
func (r *Result) Completed() bool {
	switch r.Action {
	case ActionInstalled, ActionUpdated, ActionOverwritten:
		return true
	default:
		return false
	}
}
