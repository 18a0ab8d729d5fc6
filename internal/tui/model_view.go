package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pane-dev/pane/internal/skills"
)

// View renders the picker.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.mode {
	case modeOutput:
		// Output takes over everything below the header.
		b.WriteString(m.output.View())
		b.WriteString("\n")
		b.WriteString(shortcutsHintStyle.Render(m.text.outputHints))
		return b.String()

	case modeRunning:
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " " + fmt.Sprintf(m.text.running, itemStyle.Render(m.running)) + "\n")
		return b.String()
	}

	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderList())

	if s, ok := m.selected(); ok {
		b.WriteString("\n")
		b.WriteString(m.detail(s))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m model) renderHeader() string {
	title := titleStyle.Render(m.text.title)
	if m.version != "" {
		title += statusBarStyle.Render(" " + m.version)
	}
	count := statusBarStyle.Render(fmt.Sprintf(m.text.skillCount, len(m.filtered), len(m.skills)))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(count)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + count
}

// renderList draws the visible window of matches around the cursor.
func (m model) renderList() string {
	if len(m.skills) == 0 {
		return itemDimStyle.Render("  "+m.text.emptySkills) + "\n"
	}
	if len(m.filtered) == 0 {
		return itemDimStyle.Render("  "+m.text.noMatches) + "\n"
	}

	rows := m.listHeight()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.filtered))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(m.skills[m.filtered[i]], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderRow(s skills.Skill, selected bool) string {
	marker, name := "  ", itemStyle.Render(s.Name)
	if selected {
		marker, name = selectedStyle.Render("❯ "), selectedStyle.Render(s.Name)
	}
	scope := s.Scope.String()
	row := marker + name + " " + scopeStyle(scope).Render("["+scope+"]")
	if s.Mode == skills.ModeInteractive {
		row += " " + modeBadgeStyle.Render("tui")
	}
	if s.Description != "" {
		room := m.width - lipgloss.Width(row) - 3
		if room > 10 {
			desc := s.Description
			if len([]rune(desc)) > room {
				desc = string([]rune(desc)[:room-1]) + "…"
			}
			row += "  " + itemDimStyle.Render(desc)
		}
	}
	return row
}

func (m model) renderStatusBar() string {
	var parts []string
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.defects > 0 {
		parts = append(parts, warnStyle.Render(m.text.skipped(m.defects)))
	}
	parts = append(parts, shortcutsHintStyle.Render(m.text.browseHints))
	return strings.Join(parts, "\n")
}
