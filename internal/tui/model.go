package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/pane-dev/pane/internal/runner"
	"github.com/pane-dev/pane/internal/skills"
)

// UI mode determines what the lower pane shows.
type uiMode int

const (
	modeBrowse  uiMode = iota // list plus details of the selection
	modeRunning               // captured skill in flight
	modeOutput                // output of the last captured run
)

// model is the Bubble Tea model for the picker.
type model struct {
	// Core references.
	engine  Engine
	cwd     string
	version string
	text    translations
	log     *slog.Logger

	skills  []skills.Skill
	entries []Entry
	defects int // manifests skipped while building the registry

	// UI state.
	mode          uiMode
	width, height int
	search        textinput.Model
	spinner       spinner.Model
	output        viewport.Model
	mdRenderer    *markdownRenderer
	details       map[string]string // rendered detail pane per skill ID

	// Selection.
	filtered []int // indexes into skills, best match first
	cursor   int   // index into filtered

	// Last run.
	running string // name of the captured skill in flight
	status  string

	// Whether we should quit, and why.
	quitting bool
	fatal    error
}

// newModel creates the initial picker model.
func newModel(opts Options, width, height int) model {
	all := opts.Registry.All()
	entries := make([]Entry, len(all))
	for i, s := range all {
		entries[i] = EntryFor(s)
	}

	defects := 0
	for _, d := range opts.Diagnostics {
		if d.Defect() {
			defects++
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	text := textFor(opts.Language)

	m := model{
		engine:     opts.Engine,
		cwd:        opts.CWD,
		version:    opts.Version,
		text:       text,
		log:        log,
		skills:     all,
		entries:    entries,
		defects:    defects,
		mode:       modeBrowse,
		width:      width,
		height:     height,
		search:     newSearchInput(width, text.searchPlaceholder),
		spinner:    newSpinner(),
		output:     viewport.New(width, outputHeight(height)),
		mdRenderer: newMarkdownRenderer(width),
		details:    make(map[string]string),
	}
	m.output.MouseWheelEnabled = opts.EnableMouse
	m.refilter()
	return m
}

func newSearchInput(width int, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.PromptStyle = promptStyle
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = max(width-4, 10)
	ti.Focus()
	return ti
}

// outputHeight leaves room for the header, search line and status bar.
func outputHeight(height int) int {
	return max(height-6, 3)
}

// listHeight is the number of list rows shown above the detail pane.
func (m model) listHeight() int {
	return max(m.height/2-3, 3)
}

// refilter re-ranks skills against the current query and keeps the cursor
// in range.
func (m *model) refilter() {
	m.filtered = Rank(m.search.Value(), m.entries)
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

// selected returns the skill under the cursor.
func (m model) selected() (skills.Skill, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return skills.Skill{}, false
	}
	return m.skills[m.filtered[m.cursor]], true
}

// detail returns the rendered detail pane for s, rendering it on first use.
func (m model) detail(s skills.Skill) string {
	if out, ok := m.details[s.ID]; ok {
		return out
	}
	out := m.mdRenderer.render(skillMarkdown(s))
	m.details[s.ID] = out
	return out
}

// request builds the engine request for s.
func (m model) request(s skills.Skill) runner.Request {
	return runner.Request{Skill: s, CWD: m.cwd}
}
