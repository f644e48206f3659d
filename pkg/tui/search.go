package tui

import (
	"strings"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/components"
)

// tuiRenderSearchBar replaces the status bar while filtering panels.
func tuiRenderSearchBar(query string, width int) string {
	if width <= 0 {
		return ""
	}
	return components.PadRight(components.Truncate("/"+query+"_", width), width)
}

// tuiFilterWidgets returns the indices of widgets whose ID or Title contains
// query, case-insensitively. An empty query matches everything.
func tuiFilterWidgets(widgets []app.Widget, query string) []int {
	var result []int
	lower := strings.ToLower(query)
	for i, w := range widgets {
		if lower == "" ||
			strings.Contains(strings.ToLower(w.ID()), lower) ||
			strings.Contains(strings.ToLower(w.Title()), lower) {
			result = append(result, i)
		}
	}
	return result
}
