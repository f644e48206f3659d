package theme

import "github.com/muesli/termenv"

// Adapt converts a hex colour to the closest colour profile p can show.
// Malformed colours yield termenv.NoColor.
func Adapt(p termenv.Profile, hex string) termenv.Color {
	if c := p.Color(hex); c != nil {
		return c
	}
	return termenv.NoColor{}
}
