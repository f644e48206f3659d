package app

import tea "github.com/charmbracelet/bubbletea"

// Widget is one dashboard panel.
type Widget interface {
	ID() string
	Title() string

	// Update receives every message the root model does not consume itself.
	Update(msg tea.Msg) tea.Cmd

	// View renders the panel into exactly width x height cells.
	View(width, height int) string

	// MinSize reports the smallest usable area.
	MinSize() (int, int)

	// HandleKey receives keys while the widget has focus.
	HandleKey(key tea.KeyMsg) tea.Cmd
}

// Highlighter is implemented by widgets that want their frame drawn in a
// specific colour, e.g. the posture card glowing while an alert is active.
type Highlighter interface {
	Highlight() (color string, ok bool)
}
