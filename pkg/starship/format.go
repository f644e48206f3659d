package starship

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

const separator = " │ "

func colorize(text, hex string, p termenv.Profile) string {
	if hex == "" {
		return text
	}
	return p.String(text).Foreground(theme.Adapt(p, hex)).String()
}

// formatLine joins segments and drops trailing ones that would push the
// visible width past maxWidth.
func formatLine(segments []*Segment, maxWidth int, p termenv.Profile) string {
	var (
		b     strings.Builder
		width int
	)
	for i, seg := range segments {
		part := seg.Icon + " " + seg.Text
		w := ansi.StringWidth(part)
		if i > 0 {
			w += ansi.StringWidth(separator)
		}
		if width+w > maxWidth {
			break
		}
		if i > 0 {
			b.WriteString(colorize(separator, "#6B7280", p))
		}
		b.WriteString(colorize(part, seg.Color, p))
		width += w
	}
	return b.String()
}
