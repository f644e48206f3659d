package presentation

import "strconv"

// The sensor's meaningful range is 100°-180°; it maps linearly onto 0-100%.
const (
	angleFloor = 100.0
	angleScale = 0.8
)

// AnglePercent maps a neck angle onto the display bar: 100° and below is 0%,
// 180° and above is 100%.
func AnglePercent(angle float64) float64 {
	pct := (angle - angleFloor) / angleScale
	switch {
	case pct != pct: // NaN
		return 0
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// FormatAngle renders an angle without trailing zeros, e.g. "95°", "140.5°".
func FormatAngle(angle float64) string {
	return strconv.FormatFloat(angle, 'f', -1, 64) + "°"
}
