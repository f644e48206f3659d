package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
)

// PostureWidget is the status card: variant headline, state label, angle bar
// and a short history of the normalized angle.
type PostureWidget struct {
	last        *presentation.RenderResult
	history     []float64
	showHistory bool
}

// NewPostureWidget creates an empty card.
func NewPostureWidget() *PostureWidget {
	return &PostureWidget{showHistory: true}
}

func (w *PostureWidget) ID() string          { return "posture" }
func (w *PostureWidget) Title() string       { return "Posture" }
func (w *PostureWidget) MinSize() (int, int) { return 30, 7 }

// Update stores every applied render.
func (w *PostureWidget) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(app.RenderEvent); ok {
		r := ev.Result
		w.last = &r
		w.history = pushHistory(w.history, r.AngleDisplayPercent)
	}
	return nil
}

// HandleKey toggles the history line with 'h'.
func (w *PostureWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	if key.String() == "h" {
		w.showHistory = !w.showHistory
	}
	return nil
}

// Highlight implements app.Highlighter: glowing variants frame the card in
// the accent colour while an alert is active.
func (w *PostureWidget) Highlight() (string, bool) {
	if w.last == nil || !w.last.Glow {
		return "", false
	}
	return w.last.AccentColor, true
}

// Last returns the most recent render, or nil.
func (w *PostureWidget) Last() *presentation.RenderResult { return w.last }

func (w *PostureWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if w.last == nil {
		return components.CenterMessage(components.Dim("waiting for posture data…"), width, height)
	}
	r := w.last

	card := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Background(lipgloss.Color(r.BackgroundColor)).
		Foreground(lipgloss.Color(r.TextColor))

	headline := r.Headline
	if r.Face != "" {
		headline = r.Face + "  " + headline
	}

	lines := []string{
		card.Render(""),
		card.Bold(true).Render(components.Truncate(headline, width)),
	}
	if r.Subtext != "" {
		lines = append(lines, card.Faint(true).Render(components.Truncate(r.Subtext, width)))
	}
	lines = append(lines,
		card.Render(""),
		card.Foreground(lipgloss.Color(r.AccentColor)).Render("[ "+r.Label+" ]"),
		card.Render(""),
	)

	gauge := components.NewGauge(components.GaugeStyle{
		Label:       "ANGLE",
		LabelWidth:  7,
		ShowPercent: true,
		FilledColor: r.AccentColor,
	})
	lines = append(lines,
		gauge.Render(r.AngleDisplayPercent, width),
		components.Dim(fmt.Sprintf("neck %s  status %q", presentation.FormatAngle(r.Angle), r.Status)),
	)
	if w.showHistory && len(w.history) > 1 {
		lines = append(lines, "",
			components.Dim("trend ")+components.Sparkline(w.history, width-6, 0, 100, r.AccentColor))
	}

	for len(lines) < height {
		lines = append(lines, card.Render(""))
	}
	return components.FitLines(lines, width, height)
}
