package tui

import "gitlab.com/tinyland/lab/posture-pulse/pkg/app"

// narrowWidth is the width below which panels stack in one column.
const narrowWidth = 70

// tuiCell is the placement of one widget on screen, borders included.
type tuiCell struct {
	Index      int
	X, Y, W, H int
	Focused    bool
}

// tuiComputeGrid places the visible widgets in width x (height-1), keeping
// the last row for the status bar. The first visible widget gets the left
// column; the others share the right column. Narrow terminals stack
// everything vertically.
func tuiComputeGrid(widgets []app.Widget, width, height int, visible []int, focused int) []tuiCell {
	if len(visible) == 0 || width <= 0 || height <= 1 {
		return nil
	}
	availH := height - 1

	if len(visible) == 1 {
		idx := visible[0]
		return []tuiCell{{Index: idx, W: width, H: availH, Focused: idx == focused}}
	}

	if width < narrowWidth {
		return tuiStack(visible, 0, 0, width, availH, focused)
	}

	leftW := width * 55 / 100
	if minW, _ := widgets[visible[0]].MinSize(); leftW < minW+2 && minW+2 < width {
		leftW = minW + 2
	}
	cells := []tuiCell{{
		Index:   visible[0],
		W:       leftW,
		H:       availH,
		Focused: visible[0] == focused,
	}}
	return append(cells, tuiStack(visible[1:], leftW, 0, width-leftW, availH, focused)...)
}

// tuiStack splits h rows evenly between indices; the last cell absorbs the
// remainder.
func tuiStack(indices []int, x, y, w, h, focused int) []tuiCell {
	n := len(indices)
	each := h / n
	cells := make([]tuiCell, 0, n)
	for i, idx := range indices {
		ch := each
		if i == n-1 {
			ch = h - each*(n-1)
		}
		cells = append(cells, tuiCell{
			Index:   idx,
			X:       x,
			Y:       y + i*each,
			W:       w,
			H:       ch,
			Focused: idx == focused,
		})
	}
	return cells
}
