package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrExecutableNotFound is returned before anything is spawned when a
	// skill's exec cannot be resolved.
	ErrExecutableNotFound = errors.New("executable not found")
	// ErrSpawn wraps failures to start the child process.
	ErrSpawn = errors.New("failed to start skill")
)

// ResolveExecutable turns a manifest exec value into an absolute path. Names
// containing a path separator are literal paths: relative ones are tried
// against manifestDir first, then the current directory. Bare names are
// looked up on PATH.
func ResolveExecutable(name, manifestDir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty exec", ErrExecutableNotFound)
	}
	if !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %s: not on PATH", ErrExecutableNotFound, name)
		}
		return filepath.Abs(path)
	}

	var candidates []string
	if filepath.IsAbs(name) {
		candidates = []string{name}
	} else {
		if manifestDir != "" {
			candidates = append(candidates, filepath.Join(manifestDir, name))
		}
		candidates = append(candidates, name)
	}
	for _, c := range candidates {
		if isExecutable(c) {
			return filepath.Abs(c)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// ProcessResult is what the Supervisor learned about one child.
type ProcessResult struct {
	ExitCode        int
	Signal          string // set when the child was killed by a signal
	Stdout          []byte
	Stderr          []byte
	StdoutTruncated bool
	StderrTruncated bool
}

// Streams are the terminal streams an interactive child inherits.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s Streams) withDefaults() Streams {
	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}

// Supervisor spawns skill processes. It never kills a child: every run waits
// for the process to exit on its own.
type Supervisor struct {
	// Passthrough names extra launcher variables children may inherit.
	Passthrough []string
	Logger      *slog.Logger

	lookupEnv func(string) (string, bool)
	start     func(*exec.Cmd) error
}

func (s *Supervisor) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Supervisor) command(path string, ec ExecutionContext) *exec.Cmd {
	cmd := exec.Command(path, ec.Args...)
	cmd.Dir = ec.CWD
	cmd.Env = childEnviron(ec, s.Passthrough, s.lookupEnv)
	return cmd
}

func (s *Supervisor) startCmd(cmd *exec.Cmd) error {
	if s.start != nil {
		return s.start(cmd)
	}
	return cmd.Start()
}

// RunInteractive runs the child attached to streams and blocks until it
// exits. When payload is non-nil it replaces the child's stdin.
func (s *Supervisor) RunInteractive(path string, ec ExecutionContext, payload []byte, streams Streams) (ProcessResult, error) {
	streams = streams.withDefaults()
	cmd := s.command(path, ec)
	cmd.Stdin = streams.Stdin
	if payload != nil {
		cmd.Stdin = bytes.NewReader(payload)
	}
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	if err := s.startCmd(cmd); err != nil {
		return ProcessResult{ExitCode: ExitNotStarted}, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	s.logger().Debug("skill started", "skill", ec.SkillID, "pid", cmd.Process.Pid, "mode", "interactive")

	var res ProcessResult
	if err := s.wait(cmd, &res); err != nil {
		return res, err
	}
	return res, nil
}

// CapturedProcess is a started child whose stdout and stderr are piped.
type CapturedProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
	sup    *Supervisor
	skill  string
}

// StartCaptured starts the child with both output streams piped. Stdin is
// the payload when non-nil, otherwise empty.
func (s *Supervisor) StartCaptured(path string, ec ExecutionContext, payload []byte) (*CapturedProcess, error) {
	cmd := s.command(path, ec)
	if payload != nil {
		cmd.Stdin = bytes.NewReader(payload)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}
	if err := s.startCmd(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	s.logger().Debug("skill started", "skill", ec.SkillID, "pid", cmd.Process.Pid, "mode", "captured")
	return &CapturedProcess{cmd: cmd, stdout: stdout, stderr: stderr, sup: s, skill: ec.SkillID}, nil
}

// Wait drains stdout and stderr concurrently into bounded buffers, then
// reaps the child. Both drains finish before Wait closes the pipes.
func (p *CapturedProcess) Wait() (ProcessResult, error) {
	outBuf := newBoundedBuffer(MaxCaptureBytes)
	errBuf := newBoundedBuffer(MaxCaptureBytes)

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(outBuf, p.stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(errBuf, p.stderr)
		return err
	})
	if err := g.Wait(); err != nil {
		p.sup.logger().Warn("reading skill output", "skill", p.skill, "error", err)
	}

	res := ProcessResult{
		Stdout:          outBuf.Bytes(),
		Stderr:          errBuf.Bytes(),
		StdoutTruncated: outBuf.Truncated(),
		StderrTruncated: errBuf.Truncated(),
	}
	err := p.sup.wait(p.cmd, &res)
	return res, err
}

// wait reaps cmd and fills the exit status. A non-zero exit is a result,
// not an error.
func (s *Supervisor) wait(cmd *exec.Cmd, res *ProcessResult) error {
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		if cmd.ProcessState == nil {
			res.ExitCode = ExitNotStarted
			return fmt.Errorf("waiting for skill: %w", err)
		}
		s.logger().Warn("skill wait", "error", err)
	}
	fillExitStatus(cmd.ProcessState, res)
	return nil
}

func fillExitStatus(ps *os.ProcessState, res *ProcessResult) {
	if ps == nil {
		res.ExitCode = ExitNotStarted
		return
	}
	res.ExitCode = ps.ExitCode()
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		res.Signal = ws.Signal().String()
		res.ExitCode = 128 + int(ws.Signal())
	}
}
