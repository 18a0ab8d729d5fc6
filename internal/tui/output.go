package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/pane-dev/pane/internal/runner"
	"github.com/pane-dev/pane/internal/skills"
)

// markdownRenderer renders markdown text to styled ANSI output.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// newMarkdownRenderer creates a renderer with the given terminal width.
func newMarkdownRenderer(width int) *markdownRenderer {
	if width < 40 {
		width = 80
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	return &markdownRenderer{renderer: r, width: width}
}

// render converts markdown text to styled ANSI output.
func (r *markdownRenderer) render(md string) string {
	if r == nil || r.renderer == nil {
		return md
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return md
	}
	// glamour pads with blank lines.
	return strings.Trim(out, "\n")
}

// updateWidth recreates the renderer with a new terminal width. It reports
// whether the width changed.
func (r *markdownRenderer) updateWidth(width int) bool {
	if width < 40 {
		width = 80
	}
	if width == r.width {
		return false
	}
	r.width = width
	newR, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err == nil {
		r.renderer = newR
	}
	return true
}

// skillMarkdown describes a skill for the detail pane.
func skillMarkdown(s skills.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", s.Name)
	if s.Description != "" {
		b.WriteString(s.Description + "\n\n")
	}
	fmt.Fprintf(&b, "- **id** `%s`\n", s.ID)
	fmt.Fprintf(&b, "- **version** %s\n", s.Version)
	mode := s.Mode.String()
	if s.Mode == skills.ModeInteractive && s.Fullscreen {
		mode += " (fullscreen)"
	}
	fmt.Fprintf(&b, "- **mode** %s\n", mode)
	fmt.Fprintf(&b, "- **scope** %s\n", s.Scope)
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "- **tags** %s\n", strings.Join(s.Tags, ", "))
	}
	if s.EstimatedTime != "" {
		fmt.Fprintf(&b, "- **takes** %s\n", s.EstimatedTime)
	}
	cmd := s.Exec
	if len(s.Args) > 0 {
		cmd += " " + strings.Join(s.Args, " ")
	}
	fmt.Fprintf(&b, "- **exec** `%s`\n", cmd)
	if ctx := contextSummary(s.Context); ctx != "" {
		fmt.Fprintf(&b, "- **context** %s\n", ctx)
	}
	fmt.Fprintf(&b, "- **manifest** `%s`\n", s.ManifestPath)
	return b.String()
}

func contextSummary(f skills.ContextFlags) string {
	var parts []string
	if f.CWD {
		parts = append(parts, "cwd")
	}
	if f.GitRoot {
		parts = append(parts, "git root")
	}
	if f.ProjectName {
		parts = append(parts, "project name")
	}
	if f.StdinJSON {
		parts = append(parts, "stdin json")
	}
	return strings.Join(parts, ", ")
}

// outcomeHeadline is the one-line summary of a finished run.
func outcomeHeadline(name string, out runner.Outcome) string {
	dur := out.Duration.Round(time.Millisecond)
	switch {
	case out.Success():
		return successStyle.Render("✓ "+name) + statusBarStyle.Render(fmt.Sprintf("  exit 0 in %s", dur))
	case !out.Started:
		msg := "failed to start"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		return errorStyle.Render("✗ "+name) + "  " + msg
	case out.Signal != "":
		return errorStyle.Render("✗ "+name) + statusBarStyle.Render(fmt.Sprintf("  killed by %s after %s", out.Signal, dur))
	default:
		line := errorStyle.Render("✗ "+name) + statusBarStyle.Render(fmt.Sprintf("  exit %d in %s", out.ExitCode, dur))
		if out.Err != nil {
			line += "  " + out.Err.Error()
		}
		return line
	}
}

// renderOutcome produces the output pane body for a captured run.
func renderOutcome(out runner.Outcome) string {
	var b strings.Builder
	if len(out.Stdout) > 0 {
		b.WriteString(strings.TrimRight(string(out.Stdout), "\n"))
		b.WriteString("\n")
	}
	if len(out.Stderr) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(out.Stderr), "\n"), "\n") {
			b.WriteString(stderrStyle.Render(line) + "\n")
		}
	}
	if out.Truncated() {
		b.WriteString(warnStyle.Render(fmt.Sprintf("[output truncated at %d MiB per stream]", runner.MaxCaptureBytes>>20)) + "\n")
	}
	if b.Len() == 0 {
		b.WriteString(itemDimStyle.Render("(no output)") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
