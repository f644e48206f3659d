package starship

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/daemon"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

const (
	colorLoad     = "#9CA3AF"
	colorDegraded = "#F59E0B"
)

func readFresh(path string, maxAge time.Duration, now time.Time) (daemon.Health, bool) {
	if path == "" {
		return daemon.Health{}, false
	}
	h, err := daemon.ReadHealth(path)
	if err != nil {
		return daemon.Health{}, false
	}
	if now.Sub(h.UpdatedAt) > maxAge {
		return daemon.Health{}, false
	}
	return h, true
}

// postureSegment resolves the last status through the host's variant, so
// the prompt shows the same label and accent as the dashboard.
func postureSegment(h daemon.Health) *Segment {
	if h.LastStatus == "" {
		return nil
	}
	entry := presentation.NewTable(theme.Get(h.Variant)).Resolve(h.LastStatus)

	icon := "●"
	if entry.Alert {
		icon = "▲"
	}
	text := entry.Label
	if h.LastAngle != nil {
		text += " " + presentation.FormatAngle(*h.LastAngle)
	}
	return &Segment{Icon: icon, Text: text, Color: entry.Accent}
}

func loadSegment(h daemon.Health) *Segment {
	if h.Load == nil {
		return nil
	}
	return &Segment{Icon: "⚙", Text: fmt.Sprintf("%d%%", *h.Load), Color: colorLoad}
}

// healthSegment only appears when something is wrong.
func healthSegment(h daemon.Health) *Segment {
	down := 0
	for _, c := range h.Collectors {
		if !c.Healthy {
			down++
		}
	}
	if down == 0 {
		return nil
	}
	return &Segment{Icon: "✗", Text: fmt.Sprintf("%d down", down), Color: colorDegraded}
}
