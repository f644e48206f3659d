package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VisibleLen returns the width of s in terminal cells, ignoring escape
// sequences and counting wide characters as two.
func VisibleLen(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s to at most maxWidth cells, keeping escape sequences intact.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "")
}

// TruncateWithTail is Truncate with a marker such as "…" appended when
// anything was cut. The tail counts toward maxWidth.
func TruncateWithTail(s string, maxWidth int, tail string) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, tail)
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return s + strings.Repeat(" ", width-vis)
}

// PadCenter centres s within width cells; an odd remainder goes right.
func PadCenter(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	total := width - vis
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// FitLines truncates and pads lines into an exact width x height block.
func FitLines(lines []string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	out := make([]string, height)
	for i := 0; i < height; i++ {
		line := ""
		if i < len(lines) {
			line = Truncate(lines[i], width)
		}
		out[i] = PadRight(line, width)
	}
	return strings.Join(out, "\n")
}

// CenterMessage places msg in the middle of a width x height block.
func CenterMessage(msg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := make([]string, height)
	lines[height/2] = PadCenter(Truncate(msg, width), width)
	return FitLines(lines, width, height)
}
