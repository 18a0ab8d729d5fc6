package runner

import (
	"os"
	"regexp"
	"strings"
)

// DefaultPassthrough lists the launcher variables every child inherits.
var DefaultPassthrough = []string{
	"PATH", "HOME", "USER", "SHELL", "TERM", "COLORTERM", "LANG", "LC_ALL", "TMPDIR",
}

var envNamePattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// ValidEnvName reports whether name may be listed in env_passthrough.
func ValidEnvName(name string) bool {
	return envNamePattern.MatchString(name)
}

// childEnviron builds the complete environment for a skill: allowlisted
// variables from the launcher's own environment, then the PANE_* surface.
// Inherited PANE_* values are never passed through.
func childEnviron(ec ExecutionContext, extra []string, lookup func(string) (string, bool)) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	seen := make(map[string]bool, len(DefaultPassthrough)+len(extra))
	var env []string
	for _, names := range [][]string{DefaultPassthrough, extra} {
		for _, name := range names {
			if seen[name] || !ValidEnvName(name) || strings.HasPrefix(name, "PANE_") {
				continue
			}
			seen[name] = true
			if v, ok := lookup(name); ok {
				env = append(env, name+"="+v)
			}
		}
	}
	return append(env, ec.Environ()...)
}
