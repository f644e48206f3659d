// Package theme holds the presentation variants a posture dashboard can be
// drawn in. A Variant describes how the normal and the alert state look; it
// carries no behaviour and can be loaded from TOML.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// StateStyle is the look of one posture state.
type StateStyle struct {
	Label    string // short indicator text, e.g. "NORMAL"
	Headline string // main card text
	Subtext  string // secondary card text
	Face     string // optional glyph shown next to the headline

	Background string // hex card background
	Text       string // hex card foreground
	Accent     string // hex colour for gauges, glow and log lines
}

// Variant is a named pair of state styles.
type Variant struct {
	Name string

	// Glow draws the alert state with an accent border so it stands out.
	Glow bool

	Normal StateStyle
	Alert  StateStyle
}

// DefaultName is the variant returned for unknown names.
const DefaultName = "sentry"

var (
	mu       sync.RWMutex
	registry = map[string]Variant{}
)

func init() {
	registerBuiltins()
}

// Get returns a named variant, falling back to DefaultName if not found.
func Get(name string) Variant {
	mu.RLock()
	defer mu.RUnlock()
	if v, ok := registry[strings.ToLower(name)]; ok {
		return v
	}
	return registry[DefaultName]
}

// Lookup returns a named variant and whether it exists.
func Lookup(name string) (Variant, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := registry[strings.ToLower(name)]
	return v, ok
}

// Names returns all registered variant names sorted alphabetically.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a variant under its lowercase name.
func Register(v Variant) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(v.Name)] = v
}
