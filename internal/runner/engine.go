package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pane-dev/pane/internal/skills"
)

// ExitNotStarted is the exit code of a run whose process never started.
const ExitNotStarted = -1

var (
	// ErrPanic wraps a panic recovered during a run.
	ErrPanic = errors.New("skill run panicked")
	// ErrBusy is returned when Run is called while another run is active.
	ErrBusy = errors.New("another skill is already running")
)

// State is a step of the execution state machine.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSuspending
	StateRunning
	StateRestoring
	StateDraining
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateValidating: "validating",
	StateSuspending: "suspending",
	StateRunning:    "running",
	StateRestoring:  "restoring",
	StateDraining:   "draining",
	StateCompleted:  "completed",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the result of one Run. The engine keeps no reference to it.
type Outcome struct {
	RunID       string
	SkillID     string
	Mode        skills.DisplayMode
	State       State   // Completed or Failed
	Transitions []State // every state entered, in order
	Started     bool    // the child process was spawned
	ExitCode    int     // ExitNotStarted when no process ran
	Signal      string
	Err         error

	// Captured mode only.
	Stdout          []byte
	Stderr          []byte
	StdoutTruncated bool
	StderrTruncated bool

	Duration time.Duration
}

// Success reports whether the skill ran and exited zero.
func (o Outcome) Success() bool {
	return o.State == StateCompleted && o.Err == nil && o.ExitCode == 0
}

// Truncated reports whether either captured stream hit the cap.
func (o Outcome) Truncated() bool {
	return o.StdoutTruncated || o.StderrTruncated
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Transitions = append(o.Transitions, s)
}

func (o *Outcome) fail(err error) {
	if err != nil {
		o.Err = errors.Join(o.Err, err)
	}
	o.enter(StateFailed)
}

// EngineConfig wires an Engine.
type EngineConfig struct {
	Assembler  Assembler
	Supervisor *Supervisor
	Console    Console
	Logger     *slog.Logger
}

// Engine runs one skill at a time.
type Engine struct {
	assembler  Assembler
	supervisor *Supervisor
	console    Console
	log        *slog.Logger

	busy atomic.Bool
}

// NewEngine returns an Engine. A nil Supervisor or Logger gets a default;
// a nil Console is attached to the process's own terminal.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		assembler:  cfg.Assembler,
		supervisor: cfg.Supervisor,
		console:    cfg.Console,
		log:        cfg.Logger,
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.supervisor == nil {
		e.supervisor = &Supervisor{Logger: e.log}
	}
	if e.console == nil {
		e.console = NewTermConsole(os.Stdin, os.Stdout)
	}
	return e
}

// Request describes one run.
type Request struct {
	Skill skills.Skill
	CWD   string   // defaults to the process working directory
	Args  []string // appended after the manifest args

	// Interactive mode streams; nil means the process's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs skill from cwd with extra arguments.
func (e *Engine) Execute(skill skills.Skill, cwd string, args ...string) Outcome {
	return e.Run(Request{Skill: skill, CWD: cwd, Args: args})
}

// Run executes one skill and always returns an Outcome. It never panics:
// failures, including panics inside the run, end in StateFailed.
func (e *Engine) Run(req Request) (out Outcome) {
	skill := req.Skill
	out = Outcome{
		RunID:    uuid.NewString(),
		SkillID:  skill.ID,
		Mode:     skill.Mode,
		ExitCode: ExitNotStarted,
	}
	log := e.log.With("run_id", out.RunID, "skill", skill.ID)

	if !e.busy.CompareAndSwap(false, true) {
		out.fail(ErrBusy)
		return out
	}
	defer e.busy.Store(false)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("skill run panicked", "panic", r)
			out.fail(fmt.Errorf("%w: %v", ErrPanic, r))
		}
		out.Duration = time.Since(start)
		log.Info("skill finished", "state", out.State.String(), "exit_code", out.ExitCode,
			"duration", out.Duration, "truncated", out.Truncated(), "error", out.Err)
	}()

	out.enter(StateIdle)
	out.enter(StateValidating)

	cwd := req.CWD
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			out.fail(fmt.Errorf("working directory: %w", err))
			return out
		}
		cwd = wd
	}

	path, err := ResolveExecutable(skill.Exec, skill.Dir())
	if err != nil {
		log.Warn("skill not runnable", "exec", skill.Exec, "error", err)
		out.fail(err)
		return out
	}

	ec := e.assembler.Assemble(skill, cwd, req.Args)
	var payload []byte
	if skill.Context.StdinJSON {
		payload, err = ec.StdinJSON()
		if err != nil {
			out.fail(fmt.Errorf("encoding stdin context: %w", err))
			return out
		}
	}
	log.Debug("skill validated", "path", path, "mode", skill.Mode.String(), "args", len(ec.Args))

	switch skill.Mode {
	case skills.ModeInteractive:
		streams := Streams{Stdin: req.Stdin, Stdout: req.Stdout, Stderr: req.Stderr}
		e.runInteractive(&out, log, skill, path, ec, payload, streams)
	case skills.ModeCaptured:
		e.runCaptured(&out, log, path, ec, payload)
	default:
		out.fail(fmt.Errorf("unknown display mode %v", skill.Mode))
	}
	return out
}

// runInteractive hands the terminal to the child. Once the guard is held,
// Restoring is entered on every path out, panics included.
func (e *Engine) runInteractive(out *Outcome, log *slog.Logger, skill skills.Skill, path string, ec ExecutionContext, payload []byte, streams Streams) {
	out.enter(StateSuspending)
	guard, err := Acquire(e.console, skill.Fullscreen)
	if err != nil {
		log.Error("terminal handoff failed", "error", err)
		out.fail(err)
		return
	}

	defer func() {
		r := recover()
		out.enter(StateRestoring)
		if err := guard.Release(); err != nil {
			log.Error("terminal restore failed", "error", err)
			out.Err = errors.Join(out.Err, err)
		}
		switch {
		case r != nil:
			log.Error("skill run panicked", "panic", r)
			out.fail(fmt.Errorf("%w: %v", ErrPanic, r))
		case out.Err != nil:
			out.enter(StateFailed)
		default:
			out.enter(StateCompleted)
		}
	}()

	out.enter(StateRunning)
	res, err := e.supervisor.RunInteractive(path, ec, payload, streams)
	out.Started = !errors.Is(err, ErrSpawn)
	out.ExitCode = res.ExitCode
	out.Signal = res.Signal
	if err != nil {
		log.Warn("interactive skill failed", "error", err)
		out.Err = err
	}
}

func (e *Engine) runCaptured(out *Outcome, log *slog.Logger, path string, ec ExecutionContext, payload []byte) {
	out.enter(StateRunning)
	proc, err := e.supervisor.StartCaptured(path, ec, payload)
	if err != nil {
		log.Warn("captured skill failed to start", "error", err)
		out.fail(err)
		return
	}
	out.Started = true

	out.enter(StateDraining)
	res, err := proc.Wait()
	out.ExitCode = res.ExitCode
	out.Signal = res.Signal
	out.Stdout = res.Stdout
	out.Stderr = res.Stderr
	out.StdoutTruncated = res.StdoutTruncated
	out.StderrTruncated = res.StderrTruncated
	if err != nil {
		out.fail(err)
		return
	}
	out.enter(StateCompleted)
}
