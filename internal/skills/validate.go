package skills

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxIDLength bounds skill identifiers.
	MaxIDLength = 64
	// MaxTagLength bounds individual tags.
	MaxTagLength = 32
	// DefaultVersion is used when a manifest omits version.
	DefaultVersion = "0.1.0"
)

var (
	idPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// execMetachars are rejected in exec: skills are spawned directly, never
// through a shell, so any of these means the manifest expects shell parsing.
const execMetachars = ";&|$`<>(){}[]*?!~'\"\\"

// ErrInvalid is matched by errors.Is against a *ValidationError.
var ErrInvalid = errors.New("invalid manifest")

// ValidationError reports the first manifest field that failed validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Validate checks a parsed manifest and returns the defaulted Skill for it.
func Validate(m *Manifest, scope Scope, path string) (Skill, error) {
	if m == nil {
		return Skill{}, &ValidationError{Field: "manifest", Reason: "nil manifest"}
	}

	id := m.ID
	if len(id) > MaxIDLength {
		return Skill{}, &ValidationError{Field: "id", Value: id, Reason: fmt.Sprintf("longer than %d characters", MaxIDLength)}
	}
	if !idPattern.MatchString(id) {
		return Skill{}, &ValidationError{Field: "id", Value: id, Reason: "must be lowercase alphanumeric with hyphens only"}
	}

	exec := strings.TrimSpace(m.Exec)
	if err := validateExec(exec); err != nil {
		return Skill{}, err
	}

	mode, ok := ParseDisplayMode(strings.TrimSpace(m.UI.Mode))
	if !ok {
		return Skill{}, &ValidationError{Field: "ui.mode", Value: m.UI.Mode, Reason: "must be tui or inline"}
	}

	tags, err := normalizeTags(m.Tags)
	if err != nil {
		return Skill{}, err
	}

	for i, a := range m.Args {
		if strings.ContainsRune(a, 0) {
			return Skill{}, &ValidationError{Field: fmt.Sprintf("args[%d]", i), Reason: "contains a NUL byte"}
		}
	}

	version := strings.TrimSpace(m.Version)
	if version == "" {
		version = DefaultVersion
	}
	fullscreen := true
	if m.UI.Fullscreen != nil {
		fullscreen = *m.UI.Fullscreen
	}

	s := Skill{
		ID:            id,
		Name:          strings.TrimSpace(m.Name),
		Description:   strings.TrimSpace(m.Description),
		Version:       version,
		Exec:          exec,
		Args:          append([]string(nil), m.Args...),
		Tags:          tags,
		EstimatedTime: strings.TrimSpace(m.EstimatedTime),
		Mode:          mode,
		Fullscreen:    fullscreen,
		Context: ContextFlags{
			CWD:         m.Context.PassCWD,
			GitRoot:     m.Context.PassGitRoot,
			ProjectName: m.Context.PassProjectName,
			StdinJSON:   m.Context.PassStdinJSON,
		},
		Scope:        scope,
		ManifestPath: path,
	}
	return s, nil
}

func validateExec(exec string) error {
	if exec == "" {
		return &ValidationError{Field: "exec", Reason: "must not be empty"}
	}
	if i := strings.IndexAny(exec, execMetachars); i >= 0 {
		return &ValidationError{Field: "exec", Value: exec, Reason: fmt.Sprintf("contains shell metacharacter %q", exec[i])}
	}
	for _, r := range exec {
		if r < 0x20 || r == 0x7f {
			return &ValidationError{Field: "exec", Value: exec, Reason: "contains a control character"}
		}
	}
	return nil
}

// normalizeTags validates tags and drops duplicates, keeping first-seen order.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for i, t := range tags {
		t = strings.TrimSpace(t)
		if len(t) > MaxTagLength {
			return nil, &ValidationError{Field: fmt.Sprintf("tags[%d]", i), Value: t, Reason: fmt.Sprintf("longer than %d characters", MaxTagLength)}
		}
		if !tagPattern.MatchString(t) {
			return nil, &ValidationError{Field: fmt.Sprintf("tags[%d]", i), Value: t, Reason: "must be lowercase alphanumeric, hyphen or underscore"}
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}
