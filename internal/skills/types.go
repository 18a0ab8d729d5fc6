// Package skills implements skill discovery, manifest parsing, validation,
// and registry assembly for the pane launcher.
//
// A skill is an executable described by a pane-skill.yaml manifest. Manifests
// are discovered recursively under three scope roots:
//   - ./.pane/skills/               (project, highest precedence)
//   - ~/.config/pane/skills/        (user)
//   - /usr/local/share/pane/skills/ (system, lowest precedence)
package skills

import (
	"path/filepath"
	"slices"
)

// Scope identifies which discovery root a skill came from.
type Scope int

const (
	ScopeSystem Scope = iota + 1
	ScopeUser
	ScopeProject
)

// Scopes lists every scope from highest to lowest precedence.
var Scopes = []Scope{ScopeProject, ScopeUser, ScopeSystem}

func (s Scope) String() string {
	switch s {
	case ScopeProject:
		return "project"
	case ScopeUser:
		return "user"
	case ScopeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Outranks reports whether a skill from scope s wins over one from other.
func (s Scope) Outranks(other Scope) bool {
	return s > other
}

// DisplayMode is how a skill uses the terminal.
type DisplayMode int

const (
	// ModeInteractive hands the terminal to the skill ("tui").
	ModeInteractive DisplayMode = iota + 1
	// ModeCaptured pipes the skill's output back to the launcher ("inline").
	ModeCaptured
)

// ParseDisplayMode maps a manifest ui.mode value to a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, bool) {
	switch s {
	case "tui":
		return ModeInteractive, true
	case "inline":
		return ModeCaptured, true
	}
	return 0, false
}

func (m DisplayMode) String() string {
	switch m {
	case ModeInteractive:
		return "tui"
	case ModeCaptured:
		return "inline"
	default:
		return "unknown"
	}
}

// ContextFlags records which pieces of launch context a skill asked for.
type ContextFlags struct {
	CWD         bool
	GitRoot     bool
	ProjectName bool
	StdinJSON   bool
}

// Any reports whether the skill requested any context at all.
func (f ContextFlags) Any() bool {
	return f.CWD || f.GitRoot || f.ProjectName || f.StdinJSON
}

// Skill is a validated, defaulted manifest tagged with its scope.
// Skills are values; the Registry hands out copies.
type Skill struct {
	ID            string
	Name          string
	Description   string
	Version       string
	Exec          string
	Args          []string
	Tags          []string
	EstimatedTime string // empty when the manifest gave none
	Mode          DisplayMode
	Fullscreen    bool
	Context       ContextFlags
	Scope         Scope
	ManifestPath  string // for diagnostics only
}

// Dir returns the directory holding the skill's manifest.
func (s Skill) Dir() string {
	if s.ManifestPath == "" {
		return ""
	}
	return filepath.Dir(s.ManifestPath)
}

// HasTag reports whether the skill carries the given tag.
func (s Skill) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

func (s Skill) clone() Skill {
	s.Args = slices.Clone(s.Args)
	s.Tags = slices.Clone(s.Tags)
	return s
}
