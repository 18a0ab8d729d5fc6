package runner

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ConsoleState is an opaque terminal snapshot produced by a Console.
type ConsoleState interface{}

// Console controls the terminal a skill is handed.
type Console interface {
	// Snapshot records the current terminal mode.
	Snapshot() (ConsoleState, error)
	// Prepare puts the terminal in the state a child expects: cooked mode,
	// visible cursor and, when fullscreen, a cleared screen.
	Prepare(fullscreen bool) error
	// Restore returns the terminal to a snapshot.
	Restore(state ConsoleState, fullscreen bool) error
}

const (
	ansiShowCursor  = "\x1b[?25h"
	ansiClearScreen = "\x1b[2J\x1b[H"
)

// TermConsole is the Console for a real terminal on stdin. When stdin is not
// a terminal every method is a no-op.
type TermConsole struct {
	in  *os.File
	out io.Writer
	fd  int

	mu   sync.Mutex
	base *term.State // cooked mode captured at construction
}

// NewTermConsole binds in and out. Call it before any UI switches the
// terminal to raw mode so the captured base state is the shell's own.
func NewTermConsole(in *os.File, out io.Writer) *TermConsole {
	c := &TermConsole{in: in, out: out, fd: int(in.Fd())}
	if term.IsTerminal(c.fd) {
		if st, err := term.GetState(c.fd); err == nil {
			c.base = st
		}
	}
	return c
}

// IsTerminal reports whether the console is attached to a terminal.
func (c *TermConsole) IsTerminal() bool {
	return term.IsTerminal(c.fd)
}

// Size returns the terminal dimensions, or 80x24 when unknown.
func (c *TermConsole) Size() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

func (c *TermConsole) Snapshot() (ConsoleState, error) {
	if !c.IsTerminal() {
		return nil, nil
	}
	return term.GetState(c.fd)
}

func (c *TermConsole) Prepare(fullscreen bool) error {
	if !c.IsTerminal() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base != nil {
		if err := term.Restore(c.fd, c.base); err != nil {
			return err
		}
	}
	seq := ansiShowCursor
	if fullscreen {
		seq += ansiClearScreen
	}
	_, err := io.WriteString(c.out, seq)
	return err
}

func (c *TermConsole) Restore(state ConsoleState, fullscreen bool) error {
	if !c.IsTerminal() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := state.(*term.State); ok && st != nil {
		if err := term.Restore(c.fd, st); err != nil {
			return err
		}
	}
	if fullscreen {
		_, err := io.WriteString(c.out, ansiClearScreen)
		return err
	}
	return nil
}
