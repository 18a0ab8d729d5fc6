package skills

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the file name the scanner looks for in every scope.
const ManifestFile = "pane-skill.yaml"

// Manifest is the raw content of one pane-skill.yaml file. Parse fills it
// without applying defaults; Validate turns it into a Skill.
type Manifest struct {
	ID            string          `yaml:"id"`
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description"`
	Version       string          `yaml:"version"`
	Exec          string          `yaml:"exec"`
	Args          []string        `yaml:"args"`
	Tags          []string        `yaml:"tags"`
	EstimatedTime string          `yaml:"estimated_time"`
	UI            ManifestUI      `yaml:"ui"`
	Context       ManifestContext `yaml:"context"`
}

// ManifestUI is the ui block of a manifest.
type ManifestUI struct {
	Mode       string `yaml:"mode"`
	Fullscreen *bool  `yaml:"fullscreen"` // nil when absent
}

// ManifestContext is the context block of a manifest.
type ManifestContext struct {
	PassCWD         bool `yaml:"pass_cwd"`
	PassGitRoot     bool `yaml:"pass_git_root"`
	PassProjectName bool `yaml:"pass_project_name"`
	PassStdinJSON   bool `yaml:"pass_stdin_json"`
}

// ErrorKind classifies manifest parse failures.
type ErrorKind int

const (
	KindUnreadable ErrorKind = iota + 1
	KindMalformed
	KindMissingField
)

// Sentinels matched by errors.Is against a *ParseError.
var (
	ErrUnreadable   = errors.New("manifest unreadable")
	ErrMalformed    = errors.New("manifest malformed")
	ErrMissingField = errors.New("manifest missing required field")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnreadable:
		return ErrUnreadable
	case KindMalformed:
		return ErrMalformed
	case KindMissingField:
		return ErrMissingField
	}
	return nil
}

// ParseError describes why a manifest could not be turned into a Manifest.
type ParseError struct {
	Kind  ErrorKind
	Field string // set for KindMissingField
	Err   error  // underlying I/O or YAML error, if any
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindUnreadable:
		return fmt.Sprintf("reading manifest: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("parsing manifest: %v", e.Err)
		}
		return "parsing manifest: malformed document"
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// requiredFields lists the fields every manifest must set, in report order.
var requiredFields = []struct {
	name string
	get  func(*Manifest) string
}{
	{"id", func(m *Manifest) string { return m.ID }},
	{"name", func(m *Manifest) string { return m.Name }},
	{"description", func(m *Manifest) string { return m.Description }},
	{"exec", func(m *Manifest) string { return m.Exec }},
	{"ui.mode", func(m *Manifest) string { return m.UI.Mode }},
}

// Parse decodes manifest bytes. It does no filesystem or process access and
// applies no defaults. The first missing required field is reported.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Kind: KindMalformed, Err: err}
	}

	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(&m)) == "" {
			return nil, &ParseError{Kind: KindMissingField, Field: f.name}
		}
	}
	return &m, nil
}
