package presentation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
)

// unsetStatus differs from every status the backend can send, so the first
// alert reading of a session is always treated as a transition.
const unsetStatus = "\x00unset"

// RenderResult is everything a host needs to draw one poll cycle.
type RenderResult struct {
	Seq                 uint64    `json:"seq"`
	Status              string    `json:"status"`
	BackgroundColor     string    `json:"background_color"`
	TextColor           string    `json:"text_color"`
	AccentColor         string    `json:"accent_color"`
	Label               string    `json:"label"`
	Headline            string    `json:"headline"`
	Subtext             string    `json:"subtext,omitempty"`
	Face                string    `json:"face,omitempty"`
	Glow                bool      `json:"glow"`
	AlertActive         bool      `json:"alert_active"`
	Angle               float64   `json:"angle"`
	AngleDisplayPercent float64   `json:"angle_display_percent"`
	StyleChanged        bool      `json:"style_changed"`
	NewLogEntry         *LogEntry `json:"new_log_entry,omitempty"`
}

// State is the mutable part of a session. Only the owning Session touches it.
type State struct {
	lastKnownStatus string
	appliedBG       string
	appliedText     string
	log             *LogBuffer
	lastSeq         uint64
	last            *RenderResult
}

func newState() State {
	return State{
		lastKnownStatus: unsetStatus,
		log:             NewLogBuffer(LogCapacity),
	}
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	SessionID       string        `json:"session_id"`
	Variant         string        `json:"variant"`
	LastKnownStatus string        `json:"last_known_status"`
	LastSeq         uint64        `json:"last_seq"`
	Last            *RenderResult `json:"last,omitempty"`
	Log             []LogEntry    `json:"log"`
}

// Session owns one client's presentation state. It is not safe for
// concurrent use: hosts feed it from a single goroutine (the bubbletea update
// loop, or the web hub's consumer).
type Session struct {
	id     string
	table  *Table
	state  State
	logger *zap.Logger
	now    func() time.Time
}

// NewSession creates a session that resolves statuses through table.
func NewSession(table *Table, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:     id,
		table:  table,
		state:  newState(),
		logger: logger.With(zap.String("session_id", id)),
		now:    time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Table returns the status table in use.
func (s *Session) Table() *Table { return s.table }

// SetTable switches the presentation variant. The alert history and the
// last known status are kept, so switching never produces a log entry; the
// next reading reports StyleChanged because the colours differ.
func (s *Session) SetTable(t *Table) {
	if t == nil {
		return
	}
	s.table = t
	s.logger.Info("presentation variant changed", zap.String("variant", t.Variant()))
}

// Present maps one reading onto a RenderResult and updates the session
// state. Calling it twice with the same reading yields no second log entry
// and no second style change.
func (s *Session) Present(r telemetry.Reading) RenderResult {
	entry := s.table.Resolve(r.Status)

	res := RenderResult{
		Status:              r.Status,
		BackgroundColor:     entry.Background,
		TextColor:           entry.Text,
		AccentColor:         entry.Accent,
		Label:               entry.Label,
		Headline:            entry.Headline,
		Subtext:             entry.Subtext,
		Face:                entry.Face,
		Glow:                entry.Glow,
		AlertActive:         entry.Alert,
		Angle:               r.Angle,
		AngleDisplayPercent: AnglePercent(r.Angle),
	}

	if entry.Background != s.state.appliedBG || entry.Text != s.state.appliedText {
		s.state.appliedBG = entry.Background
		s.state.appliedText = entry.Text
		res.StyleChanged = true
	}

	if r.Status != s.state.lastKnownStatus && entry.Alert {
		e := LogEntry{
			Message: fmt.Sprintf("[ALERT] Posture integrity critical: %s", FormatAngle(r.Angle)),
			Color:   entry.Accent,
			Status:  r.Status,
			Angle:   r.Angle,
			At:      s.now(),
		}
		s.state.log.Push(e)
		res.NewLogEntry = &e
		s.logger.Info("posture alert",
			zap.String("status", r.Status),
			zap.Float64("angle", r.Angle),
		)
	}
	s.state.lastKnownStatus = r.Status

	last := res
	s.state.last = &last
	return res
}

// Apply presents a poll result unless it is stale. A result is stale when a
// poll dispatched later has already been applied; stale results change
// nothing and report false.
func (s *Session) Apply(res telemetry.Result) (RenderResult, bool) {
	if res.Seq != 0 && res.Seq <= s.state.lastSeq {
		s.logger.Debug("discarding stale poll result",
			zap.Uint64("seq", res.Seq),
			zap.Uint64("last_seq", s.state.lastSeq),
		)
		return RenderResult{}, false
	}
	out := s.Present(res.Reading)
	out.Seq = res.Seq
	if res.Seq != 0 {
		s.state.lastSeq = res.Seq
	}
	s.state.last.Seq = out.Seq
	return out, true
}

// Failure records a swallowed poll failure. It only logs; the displayed
// state stays as it was until the next successful poll.
func (s *Session) Failure(err error) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.Error(err)}
	var pe *telemetry.PollError
	if errors.As(err, &pe) {
		fields = append(fields,
			zap.Uint64("seq", pe.Seq),
			zap.String("kind", pe.Kind.String()),
		)
		if pe.StatusCode != 0 {
			fields = append(fields, zap.Int("status_code", pe.StatusCode))
		}
	}
	s.logger.Debug("poll failed, keeping last render", fields...)
}

// LastKnownStatus returns the most recently applied status, or "" before
// the first reading.
func (s *Session) LastKnownStatus() string {
	if s.state.lastKnownStatus == unsetStatus {
		return ""
	}
	return s.state.lastKnownStatus
}

// Last returns the most recent render, or nil before the first reading.
func (s *Session) Last() *RenderResult {
	if s.state.last == nil {
		return nil
	}
	r := *s.state.last
	return &r
}

// Log returns the alert log, most recent first.
func (s *Session) Log() []LogEntry { return s.state.log.Entries() }

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:       s.id,
		Variant:         s.table.Variant(),
		LastKnownStatus: s.LastKnownStatus(),
		LastSeq:         s.state.lastSeq,
		Last:            s.Last(),
		Log:             s.Log(),
	}
}
