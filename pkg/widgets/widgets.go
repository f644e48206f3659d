// Package widgets provides the dashboard panels. Each implements app.Widget
// and receives its data through the bubbletea update loop: the posture card
// and alert log from app.RenderEvent, the load meter from the load
// collector's app.DataUpdateEvent.
package widgets

const maxHistory = 60

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > maxHistory {
		h = h[len(h)-maxHistory:]
	}
	return h
}
