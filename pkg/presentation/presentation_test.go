package presentation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(NewTable(theme.Get("sentry")), nil)
	fixed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func reading(angle float64, status string) telemetry.Reading {
	return telemetry.Reading{Angle: angle, Status: status}
}

// --- Theme resolution ---

func TestResolveIsTotal(t *testing.T) {
	table := NewTable(theme.Get("sentry"))
	for _, status := range []string{
		"", "Normal", "normal", "OK", "Warning: Slouching!", "Warning",
		"Warning: Leaning left", "warning", "garbage \x00", "Error",
	} {
		e := table.Resolve(status)
		assert.NotEmpty(t, e.Label, "status %q resolved to empty entry", status)
		assert.NotEmpty(t, e.Background, "status %q resolved to empty entry", status)
	}
}

func TestResolveUnknownIsNormal(t *testing.T) {
	table := NewTable(theme.Get("sentry"))
	for _, status := range []string{"", "normal", "Sitting", "warning: lowercase", "Error"} {
		e := table.Resolve(status)
		assert.False(t, e.Alert, "status %q should not be alert", status)
		assert.Equal(t, table.Normal(), e)
	}
}

func TestResolveWarningSubstringIsAlert(t *testing.T) {
	table := NewTable(theme.Get("sentry"))
	for _, status := range []string{"Warning: Slouching!", "Warning", "Warning: Leaning", "Posture Warning"} {
		e := table.Resolve(status)
		assert.True(t, e.Alert, "status %q should be alert", status)
		assert.Equal(t, "WARNING", e.Label)
	}
}

func TestResolveExactKeys(t *testing.T) {
	table := NewTable(theme.Get("pal"))
	assert.Equal(t, StatusNormal, table.Resolve("Normal").Status)
	assert.Equal(t, StatusSlouching, table.Resolve("Warning: Slouching!").Status)
	assert.Equal(t, "pal", table.Variant())
	assert.Equal(t, "🥺", table.Resolve("Warning: Slouching!").Face)
}

func TestGlowOnlyOnAlertForGlowVariants(t *testing.T) {
	sentry := NewTable(theme.Get("sentry"))
	assert.True(t, sentry.Alert().Glow)
	assert.False(t, sentry.Normal().Glow)

	pal := NewTable(theme.Get("pal"))
	assert.False(t, pal.Alert().Glow)
}

// --- Angle normalization ---

func TestAnglePercentClamping(t *testing.T) {
	cases := []struct {
		angle float64
		want  float64
	}{
		{90, 0},
		{95, 0},
		{100, 0},
		{140, 50},
		{180, 100},
		{200, 100},
		{-20, 0},
		{120, 25},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.angle), func(t *testing.T) {
			assert.InDelta(t, tc.want, AnglePercent(tc.angle), 1e-9)
		})
	}
}

func TestAnglePercentNaN(t *testing.T) {
	var zero float64
	assert.Equal(t, 0.0, AnglePercent(zero/zero))
}

func TestFormatAngle(t *testing.T) {
	assert.Equal(t, "95°", FormatAngle(95))
	assert.Equal(t, "140.5°", FormatAngle(140.5))
}

// --- Log buffer ---

func TestLogBufferBound(t *testing.T) {
	b := NewLogBuffer(LogCapacity)
	for i := 0; i < 20; i++ {
		b.Push(LogEntry{Message: fmt.Sprint(i)})
		assert.LessOrEqual(t, b.Len(), LogCapacity)
	}
	entries := b.Entries()
	require.Len(t, entries, LogCapacity)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprint(19-i), e.Message, "entry %d", i)
	}
}

func TestLogBufferPartial(t *testing.T) {
	b := NewLogBuffer(4)
	b.Push(LogEntry{Message: "a"})
	b.Push(LogEntry{Message: "b"})
	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "a", entries[1].Message)
	assert.Equal(t, 4, b.Cap())
}

func TestLogBufferDefaultCapacity(t *testing.T) {
	assert.Equal(t, LogCapacity, NewLogBuffer(0).Cap())
	assert.Empty(t, NewLogBuffer(0).Entries())
}

func TestLogBufferEntriesIsCopy(t *testing.T) {
	b := NewLogBuffer(2)
	b.Push(LogEntry{Message: "x"})
	entries := b.Entries()
	entries[0].Message = "mutated"
	assert.Equal(t, "x", b.Entries()[0].Message)
}

// --- Session ---

func TestScenarioSlouchingBelowRange(t *testing.T) {
	s := newTestSession(t)

	res := s.Present(reading(95, "Warning: Slouching!"))

	assert.True(t, res.AlertActive)
	assert.Equal(t, 0.0, res.AngleDisplayPercent)
	assert.Equal(t, "WARNING", res.Label)
	require.NotNil(t, res.NewLogEntry)
	assert.Equal(t, "[ALERT] Posture integrity critical: 95°", res.NewLogEntry.Message)
	assert.Equal(t, "#ff3333", res.NewLogEntry.Color)
	assert.True(t, res.Glow)
}

func TestFirstNormalReadingDoesNotLog(t *testing.T) {
	s := newTestSession(t)
	res := s.Present(reading(160, "Normal"))
	assert.Nil(t, res.NewLogEntry)
	assert.False(t, res.AlertActive)
	assert.Empty(t, s.Log())
	assert.Equal(t, "Normal", s.LastKnownStatus())
}

func TestEdgeTriggeredLogging(t *testing.T) {
	s := newTestSession(t)
	statuses := []string{"Normal", "Warning: Slouching!", "Warning: Slouching!", "Normal", "Warning: Slouching!"}
	logged := 0
	for i, st := range statuses {
		res := s.Present(reading(float64(130+i), st))
		if res.NewLogEntry != nil {
			logged++
		}
	}
	assert.Equal(t, 2, logged)
	assert.Len(t, s.Log(), 2)
	assert.Equal(t, "[ALERT] Posture integrity critical: 134°", s.Log()[0].Message)
	assert.Equal(t, "[ALERT] Posture integrity critical: 131°", s.Log()[1].Message)
}

func TestSwitchingBetweenWarningStringsLogsAgain(t *testing.T) {
	s := newTestSession(t)
	s.Present(reading(120, "Warning: Slouching!"))
	res := s.Present(reading(118, "Warning: Leaning"))
	assert.NotNil(t, res.NewLogEntry, "a different alert status is a new edge")
	assert.Len(t, s.Log(), 2)
}

func TestPresentIsIdempotent(t *testing.T) {
	s := newTestSession(t)
	r := reading(120, "Warning: Slouching!")

	first := s.Present(r)
	second := s.Present(r)

	assert.True(t, first.StyleChanged)
	assert.NotNil(t, first.NewLogEntry)
	assert.False(t, second.StyleChanged)
	assert.Nil(t, second.NewLogEntry)
	assert.Len(t, s.Log(), 1)

	first.StyleChanged, first.NewLogEntry = false, nil
	assert.Equal(t, first, second, "repeated render must describe the same frame")
}

func TestStyleChangedOnlyOnTransitions(t *testing.T) {
	s := newTestSession(t)
	changes := []bool{}
	for _, st := range []string{"Normal", "Normal", "Warning: Slouching!", "Warning: Other", "Normal"} {
		changes = append(changes, s.Present(reading(150, st)).StyleChanged)
	}
	assert.Equal(t, []bool{true, false, true, false, true}, changes)
}

func TestRingBufferKeepsNewestAlertTransitions(t *testing.T) {
	s := newTestSession(t)
	const m = 11
	for i := 0; i < m; i++ {
		s.Present(reading(150, "Normal"))
		s.Present(reading(float64(101+i), "Warning: Slouching!"))
	}
	log := s.Log()
	require.Len(t, log, LogCapacity)
	for i, e := range log {
		want := fmt.Sprintf("[ALERT] Posture integrity critical: %d°", 101+m-1-i)
		assert.Equal(t, want, e.Message, "entry %d", i)
	}
}

func TestApplyDiscardsStaleResults(t *testing.T) {
	s := newTestSession(t)

	res, ok := s.Apply(telemetry.Result{Seq: 2, Reading: reading(160, "Normal")})
	require.True(t, ok)
	assert.Equal(t, uint64(2), res.Seq)

	// Poll 1 completes after poll 2: it must not overwrite the fresher state.
	_, ok = s.Apply(telemetry.Result{Seq: 1, Reading: reading(110, "Warning: Slouching!")})
	assert.False(t, ok)
	assert.Equal(t, "Normal", s.LastKnownStatus())
	assert.Empty(t, s.Log())
	assert.Equal(t, uint64(2), s.Last().Seq)

	// Duplicate delivery is stale too.
	_, ok = s.Apply(telemetry.Result{Seq: 2, Reading: reading(110, "Warning: Slouching!")})
	assert.False(t, ok)

	res, ok = s.Apply(telemetry.Result{Seq: 3, Reading: reading(110, "Warning: Slouching!")})
	require.True(t, ok)
	assert.True(t, res.AlertActive)
	assert.Len(t, s.Log(), 1)
}

func TestApplyAcceptsGapsInSequence(t *testing.T) {
	s := newTestSession(t)
	_, ok := s.Apply(telemetry.Result{Seq: 1, Reading: reading(150, "Normal")})
	require.True(t, ok)
	// Polls 2-4 failed; 5 must still be applied.
	_, ok = s.Apply(telemetry.Result{Seq: 5, Reading: reading(150, "Normal")})
	assert.True(t, ok)
}

func TestFailureIsolation(t *testing.T) {
	s := newTestSession(t)
	s.Present(reading(120, "Warning: Slouching!"))
	before := s.Snapshot()

	s.Failure(&telemetry.PollError{Kind: telemetry.NetworkFailure, Seq: 9, Err: errors.New("connection refused")})
	s.Failure(&telemetry.PollError{Kind: telemetry.DecodeFailure, Seq: 10, Err: errors.New("bad json")})
	s.Failure(nil)

	assert.Equal(t, before, s.Snapshot())

	res, ok := s.Apply(telemetry.Result{Seq: 11, Reading: reading(160, "Normal")})
	require.True(t, ok)
	assert.False(t, res.AlertActive)
	assert.Equal(t, "Normal", s.LastKnownStatus())
}

func TestFailureLogsAtDebugOnly(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewSession(NewTable(theme.Get("sentry")), zap.New(core))

	s.Failure(&telemetry.PollError{Kind: telemetry.DecodeFailure, Seq: 4, StatusCode: 200, Err: errors.New("bad")})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "decode", fields["kind"])
	assert.Equal(t, uint64(4), fields["seq"])
	assert.Equal(t, s.ID(), fields["session_id"])
}

func TestSnapshotBeforeFirstReading(t *testing.T) {
	s := newTestSession(t)
	snap := s.Snapshot()
	assert.Empty(t, snap.LastKnownStatus)
	assert.Nil(t, snap.Last)
	assert.Empty(t, snap.Log)
	assert.Equal(t, "sentry", snap.Variant)
	assert.NotEmpty(t, snap.SessionID)
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	a.Present(reading(110, "Warning: Slouching!"))
	assert.Len(t, a.Log(), 1)
	assert.Empty(t, b.Log())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestLastIsCopy(t *testing.T) {
	s := newTestSession(t)
	s.Present(reading(150, "Normal"))
	last := s.Last()
	last.Label = "mutated"
	assert.NotEqual(t, "mutated", s.Last().Label)
}

func TestSetTableKeepsHistory(t *testing.T) {
	s := newTestSession(t)
	s.Present(reading(110, "Warning: Slouching!"))
	require.Len(t, s.Log(), 1)

	s.SetTable(NewTable(theme.Get("pal")))
	res := s.Present(reading(110, "Warning: Slouching!"))

	assert.Nil(t, res.NewLogEntry, "same status after a variant switch is not a transition")
	assert.True(t, res.StyleChanged)
	assert.Equal(t, "Neck getting tired?", res.Headline)
	assert.Len(t, s.Log(), 1)
	assert.Equal(t, "pal", s.Snapshot().Variant)

	s.SetTable(nil)
	assert.Equal(t, "pal", s.Table().Variant())
}
