// Package tui implements the interactive skill picker using Bubble Tea.
package tui

import "github.com/pane-dev/pane/internal/runner"

// skillFinishedMsg is sent when a run started from the picker ends.
type skillFinishedMsg struct {
	name    string
	outcome runner.Outcome
	// err is set when the terminal could not be handed back to the picker.
	err error
}
