package runner

import (
	"errors"
	"fmt"
	"sync"
)

// ErrTerminalUnmanaged means the terminal could not be restored even after a
// retry. Callers should stop and tell the user.
var ErrTerminalUnmanaged = errors.New("terminal left unmanaged, restart your terminal")

// Guard holds the terminal while a skill owns it. Exactly one Guard should be
// outstanding at a time.
type Guard struct {
	console    Console
	state      ConsoleState
	fullscreen bool

	mu       sync.Mutex
	released bool
}

// Acquire snapshots the terminal and prepares it for a child. If preparing
// fails, the snapshot is restored before the error is returned.
func Acquire(console Console, fullscreen bool) (*Guard, error) {
	state, err := console.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot terminal: %w", err)
	}
	g := &Guard{console: console, state: state, fullscreen: fullscreen}
	if err := console.Prepare(fullscreen); err != nil {
		if rerr := g.Release(); rerr != nil {
			return nil, rerr
		}
		return nil, fmt.Errorf("prepare terminal: %w", err)
	}
	return g, nil
}

// Release restores the snapshot taken by Acquire. Only the first call does
// anything; later calls return nil. A failed restore is retried once.
func (g *Guard) Release() error {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return nil
	}
	g.released = true

	if err := g.console.Restore(g.state, g.fullscreen); err == nil {
		return nil
	}
	if err := g.console.Restore(g.state, g.fullscreen); err != nil {
		return fmt.Errorf("%w: %v", ErrTerminalUnmanaged, err)
	}
	return nil
}
