// Package logging builds the launcher's slog logger. The terminal belongs to
// the picker and to skills, so logs only ever go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options selects where and how much to log.
type Options struct {
	Enabled bool
	Path    string
	Verbose bool // include debug records
}

// New returns a logger and a closer for its file. When logging is disabled
// the logger discards everything and the closer is a no-op.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if !opts.Enabled || opts.Path == "" {
		return Discard(), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return Discard(), nopCloser{}, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Discard(), nopCloser{}, fmt.Errorf("opening debug log: %w", err)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger.With("pid", os.Getpid()), f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
