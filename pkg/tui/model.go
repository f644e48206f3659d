// Package tui is the interactive terminal host. Model is the root bubbletea
// model: it owns the presentation session, applies posture results from the
// collector runner in arrival order, and fans render events out to the
// dashboard widgets.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

const clockInterval = time.Second

// Model is the root bubbletea model.
type Model struct {
	widgets []app.Widget
	session *presentation.Session
	updates <-chan collectors.Update
	logger  *zap.Logger

	keys keyMap
	help help.Model

	width, height int
	ready         bool

	focused  int
	expanded int

	showHelp    bool
	searchMode  bool
	searchQuery string

	statusMsg  string
	failures   int
	lastRender time.Time
	now        time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithSession attaches the presentation session posture results go through.
func WithSession(s *presentation.Session) Option {
	return func(m *Model) { m.session = s }
}

// WithUpdates attaches the collector runner's output channel.
func WithUpdates(ch <-chan collectors.Update) Option {
	return func(m *Model) { m.updates = ch }
}

// WithLogger sets the logger. TUI loggers must not write to the terminal.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates the root model around widgets, in display order.
func New(widgets []app.Widget, opts ...Option) Model {
	m := Model{
		widgets:  widgets,
		logger:   zap.NewNop(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		expanded: -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts listening for collector updates and the status clock. Without
// an updates channel there is nothing to start.
func (m Model) Init() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return tea.Batch(app.WaitForUpdate(m.updates), app.TickCmd(clockInterval))
}

func (m Model) Width() int            { return m.width }
func (m Model) Height() int           { return m.height }
func (m Model) Ready() bool           { return m.ready }
func (m Model) Focused() int          { return m.focused }
func (m Model) Expanded() int         { return m.expanded }
func (m Model) ShowHelp() bool        { return m.showHelp }
func (m Model) SearchMode() bool      { return m.searchMode }
func (m Model) SearchQuery() string   { return m.searchQuery }
func (m Model) Failures() int         { return m.failures }
func (m Model) StatusMessage() string { return m.statusMsg }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case app.DataUpdateEvent:
		cmd := m.handleData(msg)
		return m, tea.Batch(cmd, app.WaitForUpdate(m.updates))

	case app.TickEvent:
		m.now = msg.Time
		return m, tea.Batch(m.broadcast(msg), app.TickCmd(clockInterval))
	}

	return m, m.broadcast(msg)
}

// handleData routes one collector cycle. Posture results go through the
// session, which drops stale ones; everything else goes to the widgets.
// Any posture outcome replaces a transient status message with the live
// summary.
func (m *Model) handleData(ev app.DataUpdateEvent) tea.Cmd {
	if ev.Source != telemetry.CollectorName || m.session == nil {
		return m.broadcast(ev)
	}
	if ev.Err != nil {
		m.failures++
		m.statusMsg = ""
		m.session.Failure(ev.Err)
		return nil
	}
	res, ok := ev.Data.(telemetry.Result)
	if !ok {
		m.logger.Debug("unexpected posture payload", zap.String("type", fmt.Sprintf("%T", ev.Data)))
		return nil
	}
	out, applied := m.session.Apply(res)
	if !applied {
		return nil
	}
	m.statusMsg = ""
	m.lastRender = ev.Timestamp
	return m.broadcast(app.RenderEvent{Result: out, Log: m.session.Log()})
}

func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, w := range m.widgets {
		if cmd := w.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.searchMode {
		switch msg.Type {
		case tea.KeyEscape:
			m.searchMode = false
			m.searchQuery = ""
		case tea.KeyEnter:
			m.searchMode = false
		case tea.KeyBackspace:
			if r := []rune(m.searchQuery); len(r) > 0 {
				m.searchQuery = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			m.searchQuery += string(msg.Runes)
		}
		return m, nil
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Help):
			m.showHelp = false
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchQuery = ""
	case key.Matches(msg, m.keys.Back):
		m.expanded = -1
		m.searchQuery = ""
	case key.Matches(msg, m.keys.Next):
		m.cycleFocus(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycleFocus(-1)
	case key.Matches(msg, m.keys.Expand):
		if m.expanded == m.focused {
			m.expanded = -1
		} else if m.focused < len(m.widgets) {
			m.expanded = m.focused
		}
	case key.Matches(msg, m.keys.Theme):
		return m, m.nextVariant()
	default:
		if m.focused < len(m.widgets) {
			return m, m.widgets[m.focused].HandleKey(msg)
		}
	}
	return m, nil
}

func (m *Model) cycleFocus(step int) {
	n := len(m.widgets)
	if n == 0 {
		return
	}
	m.focused = (m.focused + step + n) % n
}

// nextVariant switches the session to the next registered variant.
func (m *Model) nextVariant() tea.Cmd {
	if m.session == nil {
		return nil
	}
	names := theme.Names()
	if len(names) == 0 {
		return nil
	}
	cur := m.session.Table().Variant()
	next := names[0]
	for i, n := range names {
		if n == cur {
			next = names[(i+1)%len(names)]
			break
		}
	}
	m.session.SetTable(presentation.NewTable(theme.Get(next)))
	m.statusMsg = "variant: " + next
	return m.broadcast(app.ThemeChangeEvent{Theme: next})
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return tuiRenderHelp(m.help, m.keys, m.width, m.height)
	}

	var body string
	if m.expanded >= 0 && m.expanded < len(m.widgets) {
		body = tuiRenderExpanded(m.widgets[m.expanded], m.width, m.height-1)
	} else {
		visible := tuiFilterWidgets(m.widgets, m.searchQuery)
		body = tuiRenderGrid(m.widgets, tuiComputeGrid(m.widgets, m.width, m.height, visible, m.focused))
	}

	var bar string
	if m.searchMode {
		bar = tuiRenderSearchBar(m.searchQuery, m.width)
	} else {
		bar = tuiRenderStatusBar(m.statusLine(), m.help.ShortHelpView(m.keys.ShortHelp()), m.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, bar)
}

// statusLine summarises the session for the status bar.
func (m Model) statusLine() string {
	if m.statusMsg != "" {
		return m.statusMsg
	}
	if m.session == nil {
		return ""
	}
	last := m.session.Last()
	if last == nil {
		return "waiting for posture data"
	}
	s := fmt.Sprintf("%s  seq %d", last.Label, last.Seq)
	if m.failures > 0 {
		s += fmt.Sprintf("  failed polls %d", m.failures)
	}
	if !m.lastRender.IsZero() && !m.now.IsZero() && m.now.After(m.lastRender) {
		s += fmt.Sprintf("  updated %s ago", m.now.Sub(m.lastRender).Truncate(time.Second))
	}
	return s
}
