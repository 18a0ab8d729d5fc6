// Package runner executes skills: it assembles the launch context, hands the
// terminal to interactive skills under a guard that always restores it, and
// supervises captured skills with bounded, concurrently drained output.
package runner

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pane-dev/pane/internal/skills"
)

// Environment variables exported to every skill.
const (
	EnvID          = "PANE_ID"
	EnvName        = "PANE_NAME"
	EnvCWD         = "PANE_CWD"
	EnvGitRoot     = "PANE_GIT_ROOT"
	EnvProjectName = "PANE_PROJECT_NAME"
	EnvConfig      = "PANE_CONFIG"
)

// ProjectDetector finds the project root enclosing dir.
type ProjectDetector interface {
	Detect(dir string) (root string, ok bool)
}

// GitDetector walks upward from dir until it finds a .git entry. Both
// directories and files (worktrees, submodules) count.
type GitDetector struct{}

// Detect implements ProjectDetector.
func (GitDetector) Detect(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Lstat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// projectName returns the last path element of dir, or "" for a root.
func projectName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// ExecutionContext is the launch context handed to one skill run. Fields the
// skill did not ask for are left empty.
type ExecutionContext struct {
	SkillID     string
	SkillName   string
	CWD         string // child working directory; exported only when Flags.CWD
	GitRoot     string
	ProjectName string
	ConfigPath  string
	Args        []string // manifest args followed by extra args
	Flags       skills.ContextFlags
}

// Assembler builds ExecutionContexts.
type Assembler struct {
	Detector   ProjectDetector // nil disables project detection
	ConfigPath string
}

// Assemble builds the context for one run of skill from cwd. Detection
// failures are not errors; the affected fields stay empty.
func (a Assembler) Assemble(skill skills.Skill, cwd string, extraArgs []string) ExecutionContext {
	ec := ExecutionContext{
		SkillID:   skill.ID,
		SkillName: skill.Name,
		CWD:       cwd,
		Flags:     skill.Context,
	}
	ec.Args = make([]string, 0, len(skill.Args)+len(extraArgs))
	ec.Args = append(ec.Args, skill.Args...)
	ec.Args = append(ec.Args, extraArgs...)

	if skill.Context.Any() {
		ec.ConfigPath = a.ConfigPath
	}

	if !skill.Context.GitRoot && !skill.Context.ProjectName {
		return ec
	}
	var root string
	if a.Detector != nil {
		if r, ok := a.Detector.Detect(cwd); ok {
			root = r
		}
	}
	if skill.Context.GitRoot {
		ec.GitRoot = root
	}
	if skill.Context.ProjectName {
		if root != "" {
			ec.ProjectName = projectName(root)
		} else if cwd != "" {
			ec.ProjectName = projectName(cwd)
		}
	}
	return ec
}

// Environ returns the PANE_* variables for the child, in a fixed order.
func (c ExecutionContext) Environ() []string {
	env := []string{
		EnvID + "=" + c.SkillID,
		EnvName + "=" + c.SkillName,
	}
	if c.Flags.CWD && c.CWD != "" {
		env = append(env, EnvCWD+"="+c.CWD)
	}
	if c.GitRoot != "" {
		env = append(env, EnvGitRoot+"="+c.GitRoot)
	}
	if c.ProjectName != "" {
		env = append(env, EnvProjectName+"="+c.ProjectName)
	}
	if c.ConfigPath != "" {
		env = append(env, EnvConfig+"="+c.ConfigPath)
	}
	return env
}

type stdinPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CWD         string   `json:"cwd,omitempty"`
	GitRoot     string   `json:"git_root,omitempty"`
	ProjectName string   `json:"project_name,omitempty"`
	Config      string   `json:"config,omitempty"`
	Args        []string `json:"args"`
}

// StdinJSON encodes the same fields as Environ, plus args, as one JSON
// object terminated by a newline.
func (c ExecutionContext) StdinJSON() ([]byte, error) {
	p := stdinPayload{
		ID:          c.SkillID,
		Name:        c.SkillName,
		GitRoot:     c.GitRoot,
		ProjectName: c.ProjectName,
		Config:      c.ConfigPath,
		Args:        c.Args,
	}
	if c.Flags.CWD {
		p.CWD = c.CWD
	}
	if p.Args == nil {
		p.Args = []string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
