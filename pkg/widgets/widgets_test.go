package widgets

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/loadsim"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

var _ app.Widget = (*PostureWidget)(nil)
var _ app.Widget = (*AlertLogWidget)(nil)
var _ app.Widget = (*LoadWidget)(nil)
var _ app.Highlighter = (*PostureWidget)(nil)

func renderEvent(s *presentation.Session, angle float64, status string) app.RenderEvent {
	res := s.Present(telemetry.Reading{Angle: angle, Status: status})
	return app.RenderEvent{Result: res, Log: s.Log()}
}

func assertBlock(t *testing.T, out string, width, height int) {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != height {
		t.Fatalf("got %d lines, want %d", len(lines), height)
	}
	for i, l := range lines {
		if w := components.VisibleLen(l); w != width {
			t.Errorf("line %d width %d, want %d: %q", i, w, width, ansi.Strip(l))
		}
	}
}

func TestPostureWidgetWaiting(t *testing.T) {
	w := NewPostureWidget()
	out := ansi.Strip(w.View(40, 8))
	if !strings.Contains(out, "waiting for posture data") {
		t.Errorf("expected waiting message, got %q", out)
	}
	if _, ok := w.Highlight(); ok {
		t.Error("no highlight before data")
	}
}

func TestPostureWidgetRendersAlert(t *testing.T) {
	s := presentation.NewSession(presentation.NewTable(theme.Get("sentry")), nil)
	w := NewPostureWidget()
	w.Update(renderEvent(s, 95, "Warning: Slouching!"))

	out := w.View(50, 12)
	assertBlock(t, out, 50, 12)
	plain := ansi.Strip(out)
	for _, want := range []string{"WARNING // SLOUCHING", "[ WARNING ]", "ANGLE", "0%", "95°"} {
		if !strings.Contains(plain, want) {
			t.Errorf("missing %q in:\n%s", want, plain)
		}
	}

	color, ok := w.Highlight()
	if !ok || color != "#ff3333" {
		t.Errorf("Highlight = %q,%v want #ff3333,true", color, ok)
	}
}

func TestPostureWidgetNormalNoHighlight(t *testing.T) {
	s := presentation.NewSession(presentation.NewTable(theme.Get("sentry")), nil)
	w := NewPostureWidget()
	w.Update(renderEvent(s, 140, "Normal"))

	if _, ok := w.Highlight(); ok {
		t.Error("normal state should not glow")
	}
	plain := ansi.Strip(w.View(50, 10))
	if !strings.Contains(plain, "NORMAL // OK") || !strings.Contains(plain, "50%") {
		t.Errorf("unexpected card:\n%s", plain)
	}
}

func TestPostureWidgetPalFace(t *testing.T) {
	s := presentation.NewSession(presentation.NewTable(theme.Get("pal")), nil)
	w := NewPostureWidget()
	w.Update(renderEvent(s, 170, "Normal"))
	plain := ansi.Strip(w.View(50, 10))
	if !strings.Contains(plain, "Great posture!") {
		t.Errorf("missing pal headline:\n%s", plain)
	}
	if _, ok := w.Highlight(); ok {
		t.Error("pal never glows")
	}
}

func TestPostureWidgetHistoryToggle(t *testing.T) {
	s := presentation.NewSession(presentation.NewTable(theme.Get("sentry")), nil)
	w := NewPostureWidget()
	w.Update(renderEvent(s, 140, "Normal"))
	w.Update(renderEvent(s, 150, "Normal"))

	if !strings.Contains(ansi.Strip(w.View(50, 14)), "trend") {
		t.Error("expected trend line")
	}
	w.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	if strings.Contains(ansi.Strip(w.View(50, 14)), "trend") {
		t.Error("trend line should be hidden after h")
	}
}

func TestPostureWidgetIgnoresOtherMessages(t *testing.T) {
	w := NewPostureWidget()
	w.Update(app.DataUpdateEvent{Source: "load", Data: loadsim.Sample{Percent: 20}})
	if w.Last() != nil {
		t.Error("load updates must not touch the card")
	}
}

func TestAlertLogWidget(t *testing.T) {
	s := presentation.NewSession(presentation.NewTable(theme.Get("sentry")), nil)
	w := NewAlertLogWidget()

	if !strings.Contains(ansi.Strip(w.View(40, 4)), "no alerts") {
		t.Error("expected empty message")
	}

	w.Update(renderEvent(s, 110, "Warning: Slouching!"))
	w.Update(renderEvent(s, 150, "Normal"))
	w.Update(renderEvent(s, 120, "Warning: Slouching!"))

	if len(w.Entries()) != 2 {
		t.Fatalf("entries = %d, want 2", len(w.Entries()))
	}
	out := w.View(60, 4)
	assertBlock(t, out, 60, 4)
	lines := strings.Split(ansi.Strip(out), "\n")
	if !strings.Contains(lines[0], "120°") || !strings.Contains(lines[1], "110°") {
		t.Errorf("expected newest first, got %q", lines[:2])
	}
}

func TestAlertLogWidgetTimestampToggle(t *testing.T) {
	w := NewAlertLogWidget()
	at := time.Date(2026, 3, 1, 9, 30, 15, 0, time.Local)
	w.Update(app.RenderEvent{Log: []presentation.LogEntry{{Message: "[ALERT] Posture integrity critical: 95°", At: at}}})

	if !strings.Contains(ansi.Strip(w.View(60, 2)), "09:30:15") {
		t.Error("expected timestamp")
	}
	w.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	plain := ansi.Strip(w.View(60, 2))
	if strings.Contains(plain, "09:30:15") {
		t.Error("timestamp should be hidden")
	}
	if !strings.HasPrefix(plain, "[ALERT]") {
		t.Errorf("unexpected line %q", plain)
	}
}

func TestLoadWidget(t *testing.T) {
	w := NewLoadWidget()
	if _, ok := w.Percent(); ok {
		t.Error("no sample yet")
	}

	w.Update(app.DataUpdateEvent{Source: loadsim.CollectorName, Data: loadsim.Sample{Percent: 23, Changed: true}})
	w.Update(app.DataUpdateEvent{Source: "posture", Data: loadsim.Sample{Percent: 99}})

	pct, ok := w.Percent()
	if !ok || pct != 23 {
		t.Errorf("Percent = %d,%v want 23,true", pct, ok)
	}
	out := w.View(30, 3)
	assertBlock(t, out, 30, 3)
	if !strings.Contains(ansi.Strip(out), "SYS LOAD 23%") {
		t.Errorf("unexpected view %q", ansi.Strip(out))
	}

	w.Update(app.DataUpdateEvent{Source: loadsim.CollectorName, Err: errors.New("no cpu")})
	if !strings.Contains(ansi.Strip(w.View(40, 3)), "stale") {
		t.Error("expected stale marker after error")
	}
	if pct, _ := w.Percent(); pct != 23 {
		t.Error("error must keep the last value")
	}
}

func TestPushHistoryBounded(t *testing.T) {
	var h []float64
	for i := 0; i < maxHistory+10; i++ {
		h = pushHistory(h, float64(i))
	}
	if len(h) != maxHistory {
		t.Fatalf("len = %d", len(h))
	}
	if h[0] != 10 {
		t.Errorf("oldest = %v, want 10", h[0])
	}
}
