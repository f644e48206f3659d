// Package app holds the Elm-architecture plumbing shared by the dashboard:
// the messages that flow through the bubbletea update loop, the commands
// that produce them, and the Widget contract every panel implements.
package app

import (
	"time"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
)

// DataUpdateEvent carries one collector cycle into the update loop.
// Receivers type-assert Data based on Source.
type DataUpdateEvent struct {
	Source    string      // collector name ("posture", "load")
	Data      interface{} // nil when Err is set
	Err       error
	Timestamp time.Time
}

// FromUpdate converts a runner update into a DataUpdateEvent.
func FromUpdate(u collectors.Update) DataUpdateEvent {
	return DataUpdateEvent{
		Source:    u.Source,
		Data:      u.Data,
		Err:       u.Error,
		Timestamp: u.Timestamp,
	}
}

// RenderEvent is broadcast to widgets after the session applied a fresh
// posture reading. Log is the full alert log, most recent first.
type RenderEvent struct {
	Result presentation.RenderResult
	Log    []presentation.LogEntry
}

// TickEvent is sent by the clock ticker so widgets can age their data.
type TickEvent struct {
	Time time.Time
}

// ThemeChangeEvent is broadcast after the presentation variant switched.
type ThemeChangeEvent struct {
	Theme string
}
