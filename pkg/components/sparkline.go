package components

import "strings"

var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values of data as block glyphs scaled
// to [minY, maxY]. Equal bounds auto-scale to the data.
func Sparkline(data []float64, width int, minY, maxY float64, color string) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	if minY == maxY {
		minY, maxY = data[0], data[0]
		for _, v := range data {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}

	var b strings.Builder
	span := maxY - minY
	for _, v := range data {
		idx := 0
		if span > 0 {
			idx = int((v - minY) / span * 7)
		}
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return Fg(color, b.String())
}
