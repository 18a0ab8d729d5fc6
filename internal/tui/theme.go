package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds all picker styles and colors.
var (
	// Colors.
	colorPurple = lipgloss.Color("#A855F7")
	colorGreen  = lipgloss.Color("#22C55E")
	colorRed    = lipgloss.Color("#EF4444")
	colorYellow = lipgloss.Color("#EAB308")
	colorDim    = lipgloss.Color("#6B7280")
	colorCyan   = lipgloss.Color("#06B6D4")
	colorWhite  = lipgloss.Color("#F9FAFB")
	colorOrange = lipgloss.Color("#FF6A00")

	// Header and search prompt.
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	// Skill list.
	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	itemDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	scopeStyles = map[string]lipgloss.Style{
		"project": lipgloss.NewStyle().Foreground(colorGreen),
		"user":    lipgloss.NewStyle().Foreground(colorCyan),
		"system":  lipgloss.NewStyle().Foreground(colorDim),
	}

	modeBadgeStyle = lipgloss.NewStyle().
			Foreground(colorOrange)

	// Output pane.
	stderrStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Outcome lines.
	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Status bar and key hints.
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	shortcutsHintStyle = lipgloss.NewStyle().
				Foreground(colorDim)
)

func scopeStyle(scope string) lipgloss.Style {
	if s, ok := scopeStyles[scope]; ok {
		return s
	}
	return itemDimStyle
}
