package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/loadsim"
)

const loadColor = "#64B5F6"

// LoadWidget shows the decorative system load readout.
type LoadWidget struct {
	current   int
	seen      bool
	available bool
	history   []float64
}

// NewLoadWidget creates an empty load meter.
func NewLoadWidget() *LoadWidget {
	return &LoadWidget{available: true}
}

func (w *LoadWidget) ID() string                     { return "load" }
func (w *LoadWidget) Title() string                  { return "System Load" }
func (w *LoadWidget) MinSize() (int, int)            { return 20, 3 }
func (w *LoadWidget) HandleKey(_ tea.KeyMsg) tea.Cmd { return nil }

// Percent returns the displayed load and whether any sample arrived yet.
func (w *LoadWidget) Percent() (int, bool) { return w.current, w.seen }

func (w *LoadWidget) Update(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(app.DataUpdateEvent)
	if !ok || ev.Source != loadsim.CollectorName {
		return nil
	}
	if ev.Err != nil {
		w.available = false
		return nil
	}
	s, ok := ev.Data.(loadsim.Sample)
	if !ok {
		return nil
	}
	w.available = true
	w.seen = true
	w.current = s.Percent
	w.history = pushHistory(w.history, float64(s.Percent))
	return nil
}

func (w *LoadWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !w.seen {
		return components.CenterMessage(components.Dim("--%"), width, height)
	}

	header := components.Bold(fmt.Sprintf("SYS LOAD %d%%", w.current))
	if !w.available {
		header += components.Dim("  (stale)")
	}
	gauge := components.NewGauge(components.GaugeStyle{FilledColor: loadColor})
	lines := []string{
		header,
		gauge.Render(float64(w.current), width),
		components.Sparkline(w.history, width, 0, 100, loadColor),
	}
	return components.FitLines(lines, width, height)
}
