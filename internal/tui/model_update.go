package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pane-dev/pane/internal/skills"
)

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// ── Terminal resize ──
	case tea.WindowSizeMsg:
		// Ignore zero sizes from pseudo-terminals; keep the previous values.
		if msg.Width > 0 {
			m.width = msg.Width
			m.search.Width = max(msg.Width-4, 10)
			m.output.Width = msg.Width
			if m.mdRenderer.updateWidth(msg.Width) {
				clear(m.details)
			}
		}
		if msg.Height > 0 {
			m.height = msg.Height
			m.output.Height = outputHeight(msg.Height)
		}
		return m, nil

	// ── Key events ──
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.mode == modeOutput {
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}
		return m, nil

	// ── Skill runs ──
	case skillFinishedMsg:
		return m.handleFinished(msg)

	case spinner.TickMsg:
		if m.mode != modeRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.mode == modeRunning {
			m.status = fmt.Sprintf(m.text.waiting, m.running)
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeRunning:
		return m, nil

	case modeOutput:
		switch msg.String() {
		case "esc", "q", "enter":
			m.mode = modeBrowse
			return m, nil
		}
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		if m.search.Value() != "" {
			m.search.Reset()
			m.refilter()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "up", "ctrl+p", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "ctrl+n", "tab":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil

	case "pgup":
		m.cursor = max(m.cursor-m.listHeight(), 0)
		return m, nil

	case "pgdown":
		m.cursor = max(min(m.cursor+m.listHeight(), len(m.filtered)-1), 0)
		return m, nil

	case "enter":
		s, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.start(s)
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor = 0
		m.refilter()
	}
	return m, cmd
}

// start launches s. Interactive skills take over the terminal; captured
// skills run in the background behind a spinner.
func (m model) start(s skills.Skill) (tea.Model, tea.Cmd) {
	m.log.Debug("starting skill from picker", "skill", s.ID, "mode", s.Mode.String())
	m.status = ""
	req := m.request(s)
	if s.Mode == skills.ModeInteractive {
		return m, runInteractive(m.engine, req)
	}
	m.mode = modeRunning
	m.running = s.Name
	return m, tea.Batch(m.spinner.Tick, runCaptured(m.engine, req))
}

func (m model) handleFinished(msg skillFinishedMsg) (tea.Model, tea.Cmd) {
	m.running = ""
	if msg.err != nil {
		// The terminal is in an unknown state; stop drawing on it.
		m.log.Error("terminal handoff failed", "skill", msg.name, "error", msg.err)
		m.fatal = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	out := msg.outcome
	headline := outcomeHeadline(msg.name, out)
	if out.Mode == skills.ModeCaptured && out.Started {
		m.mode = modeOutput
		m.output.SetContent(headline + "\n\n" + renderOutcome(out))
		m.output.GotoTop()
		m.status = ""
	} else {
		m.mode = modeBrowse
		m.status = headline
	}

	var cmds []tea.Cmd
	if !m.search.Focused() {
		cmds = append(cmds, m.search.Focus())
	}
	return m, tea.Batch(cmds...)
}
