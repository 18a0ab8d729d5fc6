// Package cli wires the pane command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pane-dev/pane/internal/tui"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "pane",
	Short: "pane - a terminal launcher for project, user and system skills",
	Long: `pane discovers skills described by pane-skill.yaml manifests and runs them.

Skills are looked up in three places, highest precedence first:
  ./.pane/skills/                (project)
  ~/.config/pane/skills/         (user)
  /usr/local/share/pane/skills/  (system)

Without a subcommand pane opens an interactive picker.

Example:
  pane run git-status -- --short`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPicker,
}

// ExitError asks main to exit with Code. Err, when set, is printed first.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	rootCmd.Version = version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $PANE_CONFIG_PATH or ~/.config/pane/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "write debug records to the debug log")
}

func runPicker(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the picker needs a terminal; use 'pane list' and 'pane run <skill>' instead")
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	reg, diags := e.buildRegistry()
	engine := e.newEngine()

	stop := shieldInterrupts(e.log)
	defer stop()

	return tui.Run(tui.Options{
		Registry:    reg,
		Engine:      engine,
		CWD:         e.cwd,
		Diagnostics: diags,
		EnableMouse: e.cfg.EnableMouse,
		Version:     version,
		Language:    tui.ParseLanguage(e.cfg.Language),
		Logger:      e.log,
	})
}
