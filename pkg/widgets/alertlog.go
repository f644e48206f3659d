package widgets

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
)

// AlertLogWidget lists alert transitions, most recent first.
type AlertLogWidget struct {
	entries    []presentation.LogEntry
	timestamps bool
}

// NewAlertLogWidget creates an empty log panel.
func NewAlertLogWidget() *AlertLogWidget {
	return &AlertLogWidget{timestamps: true}
}

func (w *AlertLogWidget) ID() string          { return "alerts" }
func (w *AlertLogWidget) Title() string       { return "Alert Log" }
func (w *AlertLogWidget) MinSize() (int, int) { return 30, 3 }

func (w *AlertLogWidget) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(app.RenderEvent); ok {
		w.entries = ev.Log
	}
	return nil
}

// HandleKey toggles timestamps with 't'.
func (w *AlertLogWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	if key.String() == "t" {
		w.timestamps = !w.timestamps
	}
	return nil
}

// Entries returns what the panel currently shows.
func (w *AlertLogWidget) Entries() []presentation.LogEntry { return w.entries }

func (w *AlertLogWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(w.entries) == 0 {
		return components.CenterMessage(components.Dim("no alerts"), width, height)
	}
	lines := make([]string, 0, len(w.entries))
	for _, e := range w.entries {
		line := e.Message
		if w.timestamps {
			line = components.Dim(e.At.Format("15:04:05")) + " " + components.Fg(e.Color, line)
		} else {
			line = components.Fg(e.Color, line)
		}
		lines = append(lines, line)
	}
	return components.FitLines(lines, width, height)
}
