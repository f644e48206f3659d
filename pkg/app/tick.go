package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
)

// TickCmd returns a Cmd that sends a TickEvent after d.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// WaitForUpdate returns a Cmd that blocks until the runner publishes the next
// update. The model re-issues it after every DataUpdateEvent, so exactly one
// read is outstanding at a time. A closed channel yields a nil message.
func WaitForUpdate(updates <-chan collectors.Update) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return FromUpdate(u)
	}
}
