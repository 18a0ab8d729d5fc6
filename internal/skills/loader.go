package skills

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// manifestPattern matches manifests at any depth below a scope root.
const manifestPattern = "**/pane-skill.{yaml,yml}"

// ScanResult pairs a manifest path with its parse outcome.
// Exactly one of Manifest and Err is set.
type ScanResult struct {
	Path     string
	Manifest *Manifest
	Err      error
}

// Scanner walks one scope root for manifests.
type Scanner struct {
	Scope Scope
	Root  string
}

// Scan returns one result per manifest file found under the root. A missing
// or unreadable root yields no results; individual bad files are reported
// through ScanResult.Err.
func (s Scanner) Scan() []ScanResult {
	if s.Root == "" {
		return nil
	}
	info, err := os.Stat(s.Root)
	if err != nil || !info.IsDir() {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.Root), manifestPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	results := make([]ScanResult, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(s.Root, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, ScanResult{Path: path, Err: &ParseError{Kind: KindUnreadable, Err: err}})
			continue
		}
		m, err := Parse(data)
		if err != nil {
			results = append(results, ScanResult{Path: path, Err: err})
			continue
		}
		results = append(results, ScanResult{Path: path, Manifest: m})
	}
	return results
}

// Roots holds the directory for each scope. An empty root is skipped.
type Roots struct {
	Project string
	User    string
	System  string
}

// SystemRoot is the default system-wide skill directory.
const SystemRoot = "/usr/local/share/pane/skills"

// DefaultRoots returns the standard discovery roots for a working directory
// and home directory.
func DefaultRoots(cwd, home string) Roots {
	r := Roots{
		Project: filepath.Join(cwd, ".pane", "skills"),
		System:  SystemRoot,
	}
	if home != "" {
		r.User = filepath.Join(home, ".config", "pane", "skills")
	}
	return r
}

// Root returns the directory configured for scope.
func (r Roots) Root(scope Scope) string {
	switch scope {
	case ScopeProject:
		return r.Project
	case ScopeUser:
		return r.User
	case ScopeSystem:
		return r.System
	}
	return ""
}

// DiagnosticKind classifies registry build events.
type DiagnosticKind string

const (
	DiagParse    DiagnosticKind = "parse"    // manifest could not be read or parsed
	DiagInvalid  DiagnosticKind = "invalid"  // manifest parsed but failed validation
	DiagShadowed DiagnosticKind = "shadowed" // valid manifest lost to a higher-precedence one
)

// Diagnostic is one non-fatal event from registry assembly.
type Diagnostic struct {
	Kind       DiagnosticKind
	Scope      Scope
	Path       string
	SkillID    string // empty for parse failures
	ShadowedBy string // winning manifest path, for DiagShadowed
	Err        error  // nil for DiagShadowed
}

// Defect reports whether the diagnostic describes a broken manifest rather
// than a precedence decision.
func (d Diagnostic) Defect() bool {
	return d.Kind != DiagShadowed
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagShadowed:
		return fmt.Sprintf("%s: skill %q (%s) shadowed by %s", d.Path, d.SkillID, d.Scope, d.ShadowedBy)
	default:
		return fmt.Sprintf("%s: %s (%s): %v", d.Path, d.Kind, d.Scope, d.Err)
	}
}

type buildOptions struct {
	logger *slog.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithLogger routes build events to logger.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build scans every scope root, validates each manifest, and resolves
// identifier collisions by scope precedence (project > user > system).
// It always returns a usable registry: defective manifests are dropped and
// reported as diagnostics, one per file.
func Build(roots Roots, opts ...BuildOption) (*Registry, []Diagnostic) {
	o := buildOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	var (
		diags     []Diagnostic
		validated []Skill
	)
	for _, scope := range Scopes {
		root := roots.Root(scope)
		results := Scanner{Scope: scope, Root: root}.Scan()
		log.Debug("scanned skill scope", "scope", scope.String(), "root", root, "manifests", len(results))

		for _, res := range results {
			if res.Err != nil {
				d := Diagnostic{Kind: DiagParse, Scope: scope, Path: res.Path, Err: res.Err}
				log.Warn("skipping skill manifest", "scope", scope.String(), "path", res.Path, "error", res.Err)
				diags = append(diags, d)
				continue
			}
			skill, err := Validate(res.Manifest, scope, res.Path)
			if err != nil {
				d := Diagnostic{Kind: DiagInvalid, Scope: scope, Path: res.Path, SkillID: res.Manifest.ID, Err: err}
				log.Warn("skipping invalid skill", "scope", scope.String(), "path", res.Path, "error", err)
				diags = append(diags, d)
				continue
			}
			validated = append(validated, skill)
		}
	}

	reg, shadowed := resolve(validated)
	for _, d := range shadowed {
		log.Info("skill overridden", "skill", d.SkillID, "scope", d.Scope.String(), "path", d.Path, "winner", d.ShadowedBy)
	}
	diags = append(diags, shadowed...)
	log.Info("skill registry built", "skills", reg.Len(), "diagnostics", len(diags))
	return reg, diags
}

// resolve keeps one skill per identifier. Candidates are considered in
// precedence order; within a scope, the earlier manifest path wins.
func resolve(candidates []Skill) (*Registry, []Diagnostic) {
	ordered := append([]Skill(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Scope != ordered[j].Scope {
			return ordered[i].Scope.Outranks(ordered[j].Scope)
		}
		return ordered[i].ManifestPath < ordered[j].ManifestPath
	})

	winners := make(map[string]Skill, len(ordered))
	var (
		kept  []Skill
		diags []Diagnostic
	)
	for _, s := range ordered {
		if w, ok := winners[s.ID]; ok {
			diags = append(diags, Diagnostic{
				Kind:       DiagShadowed,
				Scope:      s.Scope,
				Path:       s.ManifestPath,
				SkillID:    s.ID,
				ShadowedBy: w.ManifestPath,
			})
			continue
		}
		winners[s.ID] = s
		kept = append(kept, s)
	}
	return newRegistry(kept), diags
}
