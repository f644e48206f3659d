package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
)

// tuiRenderGrid draws every cell in a rounded frame and joins the columns.
func tuiRenderGrid(widgets []app.Widget, cells []tuiCell) string {
	if len(cells) == 0 {
		return ""
	}

	var columns []string
	var column []string
	x := cells[0].X
	for _, c := range cells {
		if c.X != x {
			columns = append(columns, lipgloss.JoinVertical(lipgloss.Left, column...))
			column = nil
			x = c.X
		}
		column = append(column, tuiRenderCell(widgets[c.Index], c.W, c.H, c.Focused))
	}
	columns = append(columns, lipgloss.JoinVertical(lipgloss.Left, column...))
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// tuiRenderExpanded draws a single widget over the whole body.
func tuiRenderExpanded(w app.Widget, width, height int) string {
	return tuiRenderCell(w, width, height, true)
}

// tuiRenderCell frames a widget in exactly width x height cells. The first
// inner row is the title.
func tuiRenderCell(w app.Widget, width, height int, focused bool) string {
	if width < 3 || height < 3 {
		return ""
	}
	color := components.ColorBorder
	if focused {
		color = components.ColorFocus
	}
	if h, ok := w.(app.Highlighter); ok {
		if c, glow := h.Highlight(); glow {
			color = c
		}
	}

	innerW, innerH := width-2, height-2
	title := components.Bold(components.Fg(color, components.Truncate(w.Title(), innerW)))
	body := components.PadRight(title, innerW)
	if innerH > 1 {
		body += "\n" + w.View(innerW, innerH-1)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Width(innerW).
		Height(innerH).
		MaxHeight(height).
		Render(body)
}

// tuiRenderStatusBar renders the bottom row: msg followed by key hints.
func tuiRenderStatusBar(msg string, hints string, width int) string {
	if width <= 0 {
		return ""
	}
	text := hints
	if msg != "" {
		text = msg + "  |  " + hints
	}
	return components.Dim(components.PadRight(components.Truncate(text, width), width))
}

// tuiRenderHelp draws the full key reference centred on screen.
func tuiRenderHelp(h help.Model, keys keyMap, width, height int) string {
	h.ShowAll = true
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(components.ColorFocus)).
		Padding(1, 3).
		Render(components.Bold("posture-pulse") + "\n\n" + h.View(keys))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
