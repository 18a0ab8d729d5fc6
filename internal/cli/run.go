package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pane-dev/pane/internal/runner"
	"github.com/pane-dev/pane/internal/skills"
	"github.com/pane-dev/pane/internal/tui"
)

// Exit codes for runs that never produced a child exit status. They follow
// the shell's conventions.
const (
	exitNotFound      = 127
	exitCannotExecute = 126
)

var runCmd = &cobra.Command{
	Use:   "run <skill-id> [-- args...]",
	Short: "Run a skill by id",
	Long: `Run a skill without opening the picker.

Arguments after -- are appended to the manifest's args. The skill's exit
code becomes pane's exit code. Captured skills have their output printed
once they finish; interactive skills take over the terminal.

Examples:
  pane run git-status
  pane run deploy -- --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSkill,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSkill(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	reg, _ := e.buildRegistry()
	id := args[0]
	skill, ok := reg.Get(id)
	if !ok {
		return unknownSkillError(reg, id)
	}

	stop := shieldInterrupts(e.log)
	defer stop()

	out := e.newEngine().Run(runner.Request{
		Skill:  skill,
		CWD:    e.cwd,
		Args:   args[1:],
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})

	if skill.Mode == skills.ModeCaptured {
		cmd.OutOrStdout().Write(out.Stdout)
		cmd.ErrOrStderr().Write(out.Stderr)
		if out.Truncated() {
			fmt.Fprintf(cmd.ErrOrStderr(), "pane: output of %s truncated at %d MiB per stream\n", skill.ID, runner.MaxCaptureBytes>>20)
		}
	}
	return exitStatus(out)
}

// exitStatus maps an outcome onto pane's own exit status.
func exitStatus(out runner.Outcome) error {
	switch {
	case errors.Is(out.Err, runner.ErrExecutableNotFound):
		return &ExitError{Code: exitNotFound, Err: out.Err}
	case !out.Started && out.Err != nil:
		return &ExitError{Code: exitCannotExecute, Err: out.Err}
	case out.Err != nil:
		code := out.ExitCode
		if code == 0 {
			code = 1
		}
		return &ExitError{Code: code, Err: out.Err}
	case out.ExitCode != 0:
		return &ExitError{Code: out.ExitCode}
	}
	return nil
}

func unknownSkillError(reg *skills.Registry, id string) error {
	all := reg.All()
	entries := make([]tui.Entry, len(all))
	for i, s := range all {
		entries[i] = tui.EntryFor(s)
	}
	if ranked := tui.Rank(id, entries); len(ranked) > 0 {
		return fmt.Errorf("unknown skill %q (did you mean %q?)", id, all[ranked[0]].ID)
	}
	return fmt.Errorf("unknown skill %q; run 'pane list' to see available skills", id)
}
