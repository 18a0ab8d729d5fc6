package tui

import (
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/pane-dev/pane/internal/skills"
)

// Options bundles everything the picker needs from the CLI.
type Options struct {
	Registry    *skills.Registry
	Engine      Engine
	CWD         string
	Diagnostics []skills.Diagnostic
	EnableMouse bool
	Version     string
	Language    Language
	Logger      *slog.Logger
}

// Run starts the picker and blocks until the user quits. It returns the
// terminal error that forced an exit, if any.
func Run(opts Options) error {
	if opts.Engine == nil {
		return errors.New("tui: no engine")
	}

	// Detect terminal size for the initial layout.
	width, height := 80, 24
	if w, h, err := term.GetSize(0); err == nil && w > 0 {
		width, height = w, h
	}

	m := newModel(opts, width, height)

	// Interrupts are the caller's to handle: while a skill owns the terminal
	// Ctrl+C belongs to the skill.
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if opts.EnableMouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, progOpts...)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.fatal != nil {
		return fm.fatal
	}
	return nil
}
