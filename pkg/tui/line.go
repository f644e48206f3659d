package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/loadsim"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

// LineRenderer is the plain host used when stdout is not a terminal or for
// a single -once poll: one line per applied render, plus one per new alert
// log entry.
type LineRenderer struct {
	out   *termenv.Output
	width int
	load  int
	seen  bool
}

// NewLineRenderer writes to w. A positive width truncates lines.
func NewLineRenderer(w io.Writer, width int, opts ...termenv.OutputOption) *LineRenderer {
	return &LineRenderer{out: termenv.NewOutput(w, opts...), width: width}
}

// SetLoad records the decorative load shown on subsequent lines.
func (r *LineRenderer) SetLoad(percent int) {
	r.load = percent
	r.seen = true
}

// Format returns the lines for one render.
func (r *LineRenderer) Format(res presentation.RenderResult, at time.Time) []string {
	p := r.out.ColorProfile()
	accent := theme.Adapt(p, res.AccentColor)

	label := r.out.String(fmt.Sprintf("%-8s", res.Label)).Foreground(accent).Bold().String()
	line := fmt.Sprintf("%s  %s  %s  angle %s (%3.0f%%)",
		at.Format("15:04:05"), label, res.Headline,
		presentation.FormatAngle(res.Angle), res.AngleDisplayPercent)
	if r.seen {
		line += fmt.Sprintf("  load %d%%", r.load)
	}
	lines := []string{r.fit(line)}

	if e := res.NewLogEntry; e != nil {
		msg := r.out.String(e.Message).Foreground(theme.Adapt(p, e.Color)).String()
		lines = append(lines, r.fit(e.At.Format("15:04:05")+"  "+msg))
	}
	return lines
}

func (r *LineRenderer) fit(s string) string {
	if r.width > 0 {
		return components.Truncate(s, r.width)
	}
	return s
}

// Write prints the lines for one render.
func (r *LineRenderer) Write(res presentation.RenderResult, at time.Time) error {
	for _, l := range r.Format(res, at) {
		if _, err := fmt.Fprintln(r.out, l); err != nil {
			return err
		}
	}
	return nil
}

// StreamLines consumes runner updates until ctx ends or the channel closes,
// applying posture results through s and printing every fresh render.
// Failed polls print nothing; the session logs them.
func StreamLines(ctx context.Context, updates <-chan collectors.Update, s *presentation.Session, r *LineRenderer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			switch u.Source {
			case loadsim.CollectorName:
				if sample, ok := u.Data.(loadsim.Sample); ok && u.Error == nil {
					r.SetLoad(sample.Percent)
				}
			case telemetry.CollectorName:
				if u.Error != nil {
					s.Failure(u.Error)
					continue
				}
				res, ok := u.Data.(telemetry.Result)
				if !ok {
					continue
				}
				out, applied := s.Apply(res)
				if !applied {
					continue
				}
				if err := r.Write(out, u.Timestamp); err != nil {
					return err
				}
			}
		}
	}
}
