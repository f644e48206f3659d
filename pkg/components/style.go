// Package components holds the small rendering primitives the dashboard
// widgets are built from: bars, sparklines and width-aware text helpers.
// Colour goes through lipgloss so it degrades with the terminal's profile.
package components

import "github.com/charmbracelet/lipgloss"

// Palette used by frames and secondary text.
const (
	ColorBorder = "#6B7280"
	ColorFocus  = "#7C3AED"
	ColorDim    = "#9CA3AF"
	ColorEmpty  = "#333333"
)

// Fg renders s in the given hex foreground colour. An empty colour returns s
// unchanged.
func Fg(hex, s string) string {
	if hex == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}

// Bold renders s in bold.
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}

// Dim renders s in the muted secondary colour.
func Dim(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDim)).Render(s)
}
