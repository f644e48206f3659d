package components

import (
	"fmt"
	"math"
	"strings"
)

// Eighth-block glyphs for sub-cell precision.
var gaugeBlocks = [9]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// GaugeStyle configures a horizontal bar.
type GaugeStyle struct {
	Label       string // optional left label, e.g. "ANGLE"
	LabelWidth  int    // fixed label column; 0 means len(Label)+1
	ShowPercent bool   // append " 73%"
	FilledColor string // hex; defaults to ColorFocus
	EmptyColor  string // hex; defaults to ColorEmpty
}

// Gauge renders a horizontal bar with eighth-cell precision.
type Gauge struct {
	style GaugeStyle
}

// NewGauge creates a gauge.
func NewGauge(style GaugeStyle) *Gauge {
	return &Gauge{style: style}
}

// Render draws percent (0-100, clamped) so that label, bar and suffix
// together occupy width cells.
func (g *Gauge) Render(percent float64, width int) string {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	var prefix, suffix string
	if g.style.Label != "" {
		lw := g.style.LabelWidth
		if lw <= 0 {
			lw = len(g.style.Label) + 1
		}
		prefix = PadRight(g.style.Label, lw)
	}
	if g.style.ShowPercent {
		suffix = fmt.Sprintf(" %3d%%", int(math.Round(percent)))
	}

	barW := width - VisibleLen(prefix) - VisibleLen(suffix)
	if barW < 1 {
		barW = 1
	}
	return prefix + g.bar(percent/100, barW) + suffix
}

func (g *Gauge) bar(ratio float64, width int) string {
	fill := g.style.FilledColor
	if fill == "" {
		fill = ColorFocus
	}
	empty := g.style.EmptyColor
	if empty == "" {
		empty = ColorEmpty
	}

	filled, partial, rest := BarCells(ratio, width)
	var b strings.Builder
	b.WriteString(strings.Repeat(string(gaugeBlocks[8]), filled))
	if partial > 0 {
		b.WriteRune(gaugeBlocks[partial])
	}
	out := Fg(fill, b.String())
	if rest > 0 {
		out += Fg(empty, strings.Repeat("░", rest))
	}
	return out
}

// BarCells splits ratio (0-1) over width cells into full cells, the eighths
// of a trailing partial cell (0-7), and the remaining empty cells.
func BarCells(ratio float64, width int) (filled, partial, empty int) {
	if width <= 0 {
		return 0, 0, 0
	}
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	units := int(math.Round(ratio * float64(width*8)))
	filled = units / 8
	partial = units % 8
	empty = width - filled
	if partial > 0 {
		empty--
	}
	return filled, partial, empty
}
