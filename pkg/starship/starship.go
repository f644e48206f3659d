// Package starship renders a one-line posture segment for shell prompts
// from the health file the web host keeps up to date. It never talks to
// the sensor itself, so a prompt stays fast when the backend is down.
package starship

import (
	"time"

	"github.com/muesli/termenv"
)

// DefaultMaxAge is how old a health file may be before it is ignored.
const DefaultMaxAge = 30 * time.Second

const defaultMaxWidth = 40

// Config controls which segments appear.
type Config struct {
	HealthFile string
	ShowLoad   bool
	ShowHealth bool
	MaxAge     time.Duration   // default DefaultMaxAge
	MaxWidth   int             // max visible width (default 40)
	Profile    termenv.Profile // colour depth of the prompt
	Now        func() time.Time
}

// Segment is one piece of the line.
type Segment struct {
	Icon  string
	Text  string
	Color string // hex
}

// Render reads the health file and returns the prompt line. It returns ""
// when the file is missing or stale, which starship treats as a hidden
// module.
func Render(cfg Config) string {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = defaultMaxWidth
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h, ok := readFresh(cfg.HealthFile, cfg.MaxAge, cfg.Now())
	if !ok {
		return ""
	}

	var segments []*Segment
	if seg := postureSegment(h); seg != nil {
		segments = append(segments, seg)
	}
	if cfg.ShowLoad {
		if seg := loadSegment(h); seg != nil {
			segments = append(segments, seg)
		}
	}
	if cfg.ShowHealth {
		if seg := healthSegment(h); seg != nil {
			segments = append(segments, seg)
		}
	}
	return formatLine(segments, cfg.MaxWidth, cfg.Profile)
}
