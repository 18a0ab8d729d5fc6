package tui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pane-dev/pane/internal/runner"
	"github.com/pane-dev/pane/internal/skills"
)

// fakeEngine records requests and returns a canned outcome.
type fakeEngine struct {
	requests []runner.Request
	outcome  runner.Outcome
}

func (e *fakeEngine) Run(req runner.Request) runner.Outcome {
	e.requests = append(e.requests, req)
	out := e.outcome
	out.SkillID = req.Skill.ID
	out.Mode = req.Skill.Mode
	return out
}

func testSkills() []skills.Skill {
	return []skills.Skill{
		{ID: "build", Name: "Build", Exec: "make", Mode: skills.ModeCaptured, Scope: skills.ScopeProject, Version: "0.1.0"},
		{ID: "docker-shell", Name: "Docker Shell", Exec: "sh", Mode: skills.ModeInteractive, Scope: skills.ScopeUser, Version: "0.1.0"},
		{ID: "git-status", Name: "Git Status", Exec: "git", Args: []string{"status"}, Mode: skills.ModeCaptured, Scope: skills.ScopeSystem, Version: "1.0.0", Description: "Show working tree status"},
	}
}

func testModel(t *testing.T, engine Engine, diags ...skills.Diagnostic) model {
	t.Helper()
	if engine == nil {
		engine = &fakeEngine{}
	}
	return newModel(Options{
		Registry:    skills.NewRegistry(testSkills()...),
		Engine:      engine,
		CWD:         t.TempDir(),
		Diagnostics: diags,
		Version:     "1.0.0-test",
	}, 100, 30)
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(model)
	}
	return m, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	for _, r := range s {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// collectMsgs runs cmd, expanding batches, and returns every message produced.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestModel_ListsAllSkillsSorted(t *testing.T) {
	m := testModel(t, nil)
	if len(m.filtered) != 3 {
		t.Fatalf("filtered = %v", m.filtered)
	}
	s, ok := m.selected()
	if !ok || s.ID != "build" {
		t.Errorf("selected = %q, want build", s.ID)
	}
	view := m.View()
	for _, name := range []string{"Build", "Docker Shell", "Git Status", "3/3 skills"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing %q", name)
		}
	}
}

func TestModel_TypingFilters(t *testing.T) {
	m := testModel(t, nil)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = typeText(t, m, "git")

	if len(m.filtered) != 1 {
		t.Fatalf("filtered = %v, want one match", m.filtered)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want reset to 0", m.cursor)
	}
	if s, _ := m.selected(); s.ID != "git-status" {
		t.Errorf("selected = %q", s.ID)
	}
}

func TestModel_NoMatches(t *testing.T) {
	m := typeText(t, testModel(t, nil), "zzzz")
	if _, ok := m.selected(); ok {
		t.Error("nothing should be selected")
	}
	if !strings.Contains(m.View(), "No matching skills") {
		t.Error("view should say nothing matched")
	}
	// Enter with no selection is a no-op.
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.mode != modeBrowse {
		t.Errorf("enter with no selection: mode=%v cmd=%v", m.mode, cmd != nil)
	}
}

func TestModel_CursorBounds(t *testing.T) {
	m := testModel(t, nil)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.cursor)
	}
	m, _ = press(t, m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
	)
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
}

func TestModel_EscClearsThenQuits(t *testing.T) {
	m := typeText(t, testModel(t, nil), "doc")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.search.Value() != "" || m.quitting {
		t.Fatalf("first esc: value=%q quitting=%v", m.search.Value(), m.quitting)
	}
	if len(m.filtered) != 3 {
		t.Errorf("filtered = %v after clear", m.filtered)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.quitting {
		t.Error("second esc should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty once quitting")
	}
}

func TestModel_CapturedRun(t *testing.T) {
	engine := &fakeEngine{outcome: runner.Outcome{
		State:   runner.StateCompleted,
		Started: true,
		Stdout:  []byte("built 3 targets\n"),
		Stderr:  []byte("warning: cache cold\n"),
	}}
	m := testModel(t, engine)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeRunning || m.running != "Build" {
		t.Fatalf("mode=%v running=%q", m.mode, m.running)
	}
	if !strings.Contains(m.View(), "Running") {
		t.Error("view should show the spinner line")
	}

	var finished *skillFinishedMsg
	for _, msg := range collectMsgs(cmd) {
		if f, ok := msg.(skillFinishedMsg); ok {
			finished = &f
		}
	}
	if finished == nil {
		t.Fatal("no skillFinishedMsg produced")
	}
	if len(engine.requests) != 1 || engine.requests[0].Skill.ID != "build" || engine.requests[0].CWD != m.cwd {
		t.Fatalf("requests = %+v", engine.requests)
	}

	next, _ := m.Update(*finished)
	m = next.(model)
	if m.mode != modeOutput {
		t.Fatalf("mode = %v, want output", m.mode)
	}
	view := m.View()
	for _, want := range []string{"Build", "built 3 targets", "warning: cache cold"} {
		if !strings.Contains(view, want) {
			t.Errorf("output view missing %q", want)
		}
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeBrowse || m.quitting {
		t.Errorf("esc from output: mode=%v quitting=%v", m.mode, m.quitting)
	}
}

func TestModel_CtrlCWaitsForCapturedRun(t *testing.T) {
	m := testModel(t, nil)
	m.mode = modeRunning
	m.running = "Build"

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.quitting {
		t.Error("ctrl+c must not abandon a running skill")
	}
	if !strings.Contains(m.status, "Build") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_CtrlCQuits(t *testing.T) {
	m, _ := press(t, testModel(t, nil), tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.quitting {
		t.Error("ctrl+c should quit")
	}
}

func TestModel_InteractiveFinishedSetsStatus(t *testing.T) {
	m := testModel(t, nil)
	next, _ := m.Update(skillFinishedMsg{
		name: "Docker Shell",
		outcome: runner.Outcome{
			Mode:     skills.ModeInteractive,
			State:    runner.StateCompleted,
			Started:  true,
			ExitCode: 3,
		},
	})
	m = next.(model)
	if m.mode != modeBrowse {
		t.Errorf("mode = %v", m.mode)
	}
	if !strings.Contains(m.status, "exit 3") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_NotStartedShowsError(t *testing.T) {
	m := testModel(t, nil)
	next, _ := m.Update(skillFinishedMsg{
		name: "Build",
		outcome: runner.Outcome{
			Mode:     skills.ModeCaptured,
			State:    runner.StateFailed,
			ExitCode: runner.ExitNotStarted,
			Err:      fmt.Errorf("%w: make", runner.ErrExecutableNotFound),
		},
	})
	m = next.(model)
	if m.mode != modeBrowse {
		t.Errorf("mode = %v, a run that never started has no output", m.mode)
	}
	if !strings.Contains(m.status, "make") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_TerminalFailureQuits(t *testing.T) {
	m := testModel(t, nil)
	next, cmd := m.Update(skillFinishedMsg{name: "Docker Shell", err: runner.ErrTerminalUnmanaged})
	m = next.(model)
	if !m.quitting || !errors.Is(m.fatal, runner.ErrTerminalUnmanaged) {
		t.Errorf("quitting=%v fatal=%v", m.quitting, m.fatal)
	}
	if cmd == nil {
		t.Error("expected tea.Quit")
	}
}

func TestModel_DefectsInStatusBar(t *testing.T) {
	m := testModel(t, nil,
		skills.Diagnostic{Kind: skills.DiagParse, Path: "a/pane-skill.yaml"},
		skills.Diagnostic{Kind: skills.DiagShadowed, Path: "b/pane-skill.yaml"},
	)
	if m.defects != 1 {
		t.Errorf("defects = %d, shadowed entries are not defects", m.defects)
	}
	if !strings.Contains(m.View(), "1 manifest skipped") {
		t.Error("status bar should report the skipped manifest")
	}
}

func TestModel_EmptyRegistry(t *testing.T) {
	m := newModel(Options{Registry: skills.NewRegistry(), Engine: &fakeEngine{}}, 80, 24)
	if !strings.Contains(m.View(), "No skills found") {
		t.Error("empty registry should explain where skills come from")
	}
}

func TestModel_WindowResize(t *testing.T) {
	m := testModel(t, nil)
	m.View() // populate the detail cache
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	m = next.(model)
	if m.width != 60 || m.height != 40 || m.output.Height != outputHeight(40) {
		t.Errorf("size = %dx%d output=%d", m.width, m.height, m.output.Height)
	}
	if len(m.details) != 0 {
		t.Error("detail cache should be cleared on width change")
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
	if got := next.(model); got.width != 60 || got.height != 40 {
		t.Error("zero size should be ignored")
	}
}

func TestSkillExec(t *testing.T) {
	engine := &fakeEngine{outcome: runner.Outcome{State: runner.StateCompleted, Started: true}}
	var in, out, errOut bytes.Buffer
	ex := &skillExec{engine: engine, req: runner.Request{Skill: testSkills()[1]}}
	ex.SetStdin(&in)
	ex.SetStdout(&out)
	ex.SetStderr(&errOut)

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	req := engine.requests[0]
	if req.Stdin != &in || req.Stdout != &out || req.Stderr != &errOut {
		t.Error("streams were not forwarded to the engine")
	}
	if ex.outcome.SkillID != "docker-shell" {
		t.Errorf("outcome = %+v", ex.outcome)
	}
}

func TestSkillExec_UnmanagedTerminal(t *testing.T) {
	engine := &fakeEngine{outcome: runner.Outcome{
		State: runner.StateFailed,
		Err:   fmt.Errorf("%w: restore failed", runner.ErrTerminalUnmanaged),
	}}
	ex := &skillExec{engine: engine, req: runner.Request{Skill: testSkills()[1]}}
	if err := ex.Run(); !errors.Is(err, runner.ErrTerminalUnmanaged) {
		t.Errorf("err = %v", err)
	}

	// Any other failure stays in the outcome.
	engine.outcome.Err = errors.New("exit status 1")
	if err := ex.Run(); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestOutcomeHeadline(t *testing.T) {
	tests := []struct {
		name string
		out  runner.Outcome
		want string
	}{
		{"success", runner.Outcome{State: runner.StateCompleted, Started: true}, "exit 0"},
		{"exit code", runner.Outcome{State: runner.StateCompleted, Started: true, ExitCode: 2}, "exit 2"},
		{"signal", runner.Outcome{State: runner.StateCompleted, Started: true, ExitCode: 137, Signal: "SIGKILL"}, "killed by SIGKILL"},
		{"not started", runner.Outcome{State: runner.StateFailed, Err: errors.New("no such file")}, "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeHeadline("X", tt.out); !strings.Contains(got, tt.want) {
				t.Errorf("headline = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOutcomeTruncated(t *testing.T) {
	got := renderOutcome(runner.Outcome{Stdout: []byte("x"), StdoutTruncated: true})
	if !strings.Contains(got, "truncated at 10 MiB") {
		t.Errorf("render = %q", got)
	}
	if got := renderOutcome(runner.Outcome{}); !strings.Contains(got, "no output") {
		t.Errorf("empty render = %q", got)
	}
}
