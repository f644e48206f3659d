package theme

func registerBuiltins() {
	for _, v := range []Variant{sentryVariant(), palVariant()} {
		Register(v)
	}
}

// sentryVariant is the terminal-console look: neon text on a near-black card,
// with the alert state glowing red.
func sentryVariant() Variant {
	return Variant{
		Name: "sentry",
		Glow: true,
		Normal: StateStyle{
			Label:      "NORMAL",
			Headline:   "NORMAL // OK",
			Subtext:    "posture integrity nominal",
			Background: "#0a0f0a",
			Text:       "#00ff41",
			Accent:     "#00ff41",
		},
		Alert: StateStyle{
			Label:      "WARNING",
			Headline:   "WARNING // SLOUCHING",
			Subtext:    "posture integrity critical",
			Background: "#1a0505",
			Text:       "#ff3333",
			Accent:     "#ff3333",
		},
	}
}

// palVariant is the friendly card look with soft pastel states.
func palVariant() Variant {
	return Variant{
		Name: "pal",
		Normal: StateStyle{
			Label:      "GOOD",
			Headline:   "Great posture!",
			Subtext:    "Keep it up, you're doing well",
			Face:       "🥰",
			Background: "#e6f7ec",
			Text:       "#2f855a",
			Accent:     "#48bb78",
		},
		Alert: StateStyle{
			Label:      "WARNING",
			Headline:   "Neck getting tired?",
			Subtext:    "Lift your head a little and take a break",
			Face:       "🥺",
			Background: "#fde8ec",
			Text:       "#c53030",
			Accent:     "#f56565",
		},
	}
}
