package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pane-dev/pane/internal/config"
	"github.com/pane-dev/pane/internal/logging"
	"github.com/pane-dev/pane/internal/runner"
	"github.com/pane-dev/pane/internal/skills"
)

// env is the state every command builds before doing work.
type env struct {
	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
	cwd    string
	home   string
}

// loadEnv reads the config and opens the debug log. A corrupt config file
// is reported and replaced by the defaults; an invalid one is an error.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	home, _ := os.UserHomeDir()

	path := cfgFile
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrCorrupt):
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		cfg = config.Default()
		cfg.Path = config.ExpandHome(path)
	case err != nil:
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closer, err := logging.New(logging.Options{
		Enabled: cfg.DebugLogEnabled || verbose,
		Path:    cfg.DebugLogFile(),
		Verbose: verbose,
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	log.Debug("config loaded", "path", cfg.Path, "cwd", cwd, "command", cmd.Name())

	return &env{cfg: cfg, log: log, closer: closer, cwd: cwd, home: home}, nil
}

func (e *env) Close() error {
	return e.closer.Close()
}

func (e *env) buildRegistry() (*skills.Registry, []skills.Diagnostic) {
	return skills.Build(e.cfg.Roots(e.cwd, e.home), skills.WithLogger(e.log))
}

func (e *env) newEngine() *runner.Engine {
	return runner.NewEngine(runner.EngineConfig{
		Assembler: runner.Assembler{
			Detector:   runner.GitDetector{},
			ConfigPath: e.cfg.Path,
		},
		Supervisor: &runner.Supervisor{
			Passthrough: e.cfg.EnvPassthrough,
			Logger:      e.log,
		},
		Logger: e.log,
	})
}

// shieldInterrupts keeps Ctrl+C from killing the launcher while a skill owns
// the terminal. The child, in the same process group, still receives it.
func shieldInterrupts(log *slog.Logger) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, os.Interrupt)
	go func() {
		for {
			select {
			case <-ch:
				log.Debug("interrupt forwarded to skill")
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
