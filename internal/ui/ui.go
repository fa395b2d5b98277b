// Package ui presents live subtitles in the terminal and turns the user's
// word selection into lookups.
//
// All presenter state lives on the bubbletea event loop. The poller and the
// endpoint watcher run elsewhere and talk to the loop only through messages;
// slow work started from the loop (dispatch, preview) runs as tea.Cmds.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"sublookup/internal/lookup"
	"sublookup/internal/media"
)

const previewTimeout = 10 * time.Second

// Dispatcher launches a lookup for selected text.
type Dispatcher interface {
	Dispatch(text string) error
}

// Previewer fetches short translations for selected text.
type Previewer interface {
	Enabled() bool
	Preview(ctx context.Context, text string) ([]string, error)
}

// Messages delivered into the loop from outside.
type (
	SubtitleMsg     string
	EndpointMsg     media.Endpoint
	EndpointGoneMsg struct{}
	PlayerExitedMsg struct{ Err error }
)

type lookupMsg struct {
	text string
	err  error
}

type previewMsg struct {
	text     string
	snippets []string
	err      error
}

// Model is the bubbletea model for the subtitle strip.
type Model struct {
	dispatcher Dispatcher
	previewer  Previewer
	keys       keyMap
	help       help.Model

	words  []string
	cursor int
	anchor int // -1 when only the cursor word is selected

	window       media.WindowHandle
	endpoint     media.Endpoint
	endpointGone bool
	status       string
	preview      []string
	previewFor   string
	width        int
}

// New returns a model showing the given player window.
func New(d Dispatcher, p Previewer, window media.WindowHandle) Model {
	return Model{
		dispatcher: d,
		previewer:  p,
		keys:       defaultKeyMap(),
		help:       help.New(),
		anchor:     -1,
		window:     window,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case SubtitleMsg:
		m.words = strings.Fields(string(msg))
		m.cursor = 0
		m.anchor = -1
		return m, nil

	case EndpointMsg:
		m.endpoint = media.Endpoint(msg)
		return m, nil

	case EndpointGoneMsg:
		m.endpointGone = true
		m.status = "player control socket is gone; subtitles will no longer update"
		return m, nil

	case PlayerExitedMsg:
		return m, tea.Quit

	case lookupMsg:
		return m.handleLookup(msg)

	case previewMsg:
		if msg.text != m.previewFor {
			return m, nil
		}
		if msg.err != nil {
			m.preview = []string{"preview failed: " + msg.err.Error()}
		} else {
			m.preview = msg.snippets
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.anchor = -1
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.anchor = -1
		m.cursor = min(m.cursor+1, max(len(m.words)-1, 0))
	case key.Matches(msg, m.keys.ExtendLeft):
		m.startExtend()
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.ExtendRight):
		m.startExtend()
		m.cursor = min(m.cursor+1, max(len(m.words)-1, 0))
	case key.Matches(msg, m.keys.Lookup):
		return m, m.dispatch(m.Selection())
	case key.Matches(msg, m.keys.LookupAll):
		return m, m.dispatch(strings.Join(m.words, " "))
	}
	return m, nil
}

func (m *Model) startExtend() {
	if m.anchor < 0 {
		m.anchor = m.cursor
	}
}

// Selection returns the currently highlighted words.
func (m Model) Selection() string {
	if len(m.words) == 0 {
		return ""
	}
	lo, hi := m.selectionBounds()
	return strings.Join(m.words[lo:hi+1], " ")
}

func (m Model) selectionBounds() (int, int) {
	if m.anchor < 0 {
		return m.cursor, m.cursor
	}
	return min(m.anchor, m.cursor), max(m.anchor, m.cursor)
}

// dispatch runs the lookup off the loop. Empty selections never reach the
// dispatcher.
func (m Model) dispatch(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	d := m.dispatcher
	return func() tea.Msg {
		return lookupMsg{text: text, err: d.Dispatch(text)}
	}
}

func (m Model) handleLookup(msg lookupMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, lookup.ErrThrottled):
		m.status = "slow down: lookup skipped"
		return m, nil
	case msg.err != nil:
		m.status = fmt.Sprintf("lookup failed: %v", msg.err)
		return m, nil
	}

	m.status = fmt.Sprintf("looked up %q", msg.text)
	if m.previewer == nil || !m.previewer.Enabled() {
		return m, nil
	}

	m.previewFor = msg.text
	m.preview = nil
	p := m.previewer
	text := msg.text
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), previewTimeout)
		defer cancel()
		snippets, err := p.Preview(ctx, text)
		return previewMsg{text: text, snippets: snippets, err: err}
	}
}
