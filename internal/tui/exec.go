package tui

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pane-dev/pane/internal/runner"
)

// Engine runs skills for the picker. *runner.Engine satisfies it.
type Engine interface {
	Run(req runner.Request) runner.Outcome
}

// skillExec adapts an interactive run to tea.ExecCommand so Bubble Tea
// releases the terminal for the duration of the child.
type skillExec struct {
	engine  Engine
	req     runner.Request
	outcome runner.Outcome
}

func (e *skillExec) SetStdin(r io.Reader)  { e.req.Stdin = r }
func (e *skillExec) SetStdout(w io.Writer) { e.req.Stdout = w }
func (e *skillExec) SetStderr(w io.Writer) { e.req.Stderr = w }

// Run executes the skill. Only a terminal the engine failed to restore is
// reported as an error; every other failure travels in the outcome.
func (e *skillExec) Run() error {
	e.outcome = e.engine.Run(e.req)
	if errors.Is(e.outcome.Err, runner.ErrTerminalUnmanaged) {
		return e.outcome.Err
	}
	return nil
}

// runInteractive hands the terminal to the skill and reports back when the
// picker owns it again.
func runInteractive(engine Engine, req runner.Request) tea.Cmd {
	ex := &skillExec{engine: engine, req: req}
	return tea.Exec(ex, func(err error) tea.Msg {
		return skillFinishedMsg{name: req.Skill.Name, outcome: ex.outcome, err: err}
	})
}

// runCaptured runs the skill in the background while the picker keeps
// drawing.
func runCaptured(engine Engine, req runner.Request) tea.Cmd {
	return func() tea.Msg {
		return skillFinishedMsg{name: req.Skill.Name, outcome: engine.Run(req)}
	}
}
