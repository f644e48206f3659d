// Package presentation turns telemetry readings into render instructions. It
// resolves a status string to a theme entry, normalizes the angle into a
// display percentage, suppresses redundant style changes and keeps the
// edge-triggered alert log. It does not depend on any UI toolkit: hosts
// consume RenderResult values and draw them however they like.
package presentation

import (
	"strings"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

// Status strings emitted by the sensor backend.
const (
	StatusNormal    = "Normal"
	StatusSlouching = "Warning: Slouching!"

	// alertMarker marks any status string as an alert state.
	alertMarker = "Warning"
)

// ThemeEntry is the resolved look and alert flag for one status string.
type ThemeEntry struct {
	Status     string `json:"status"`
	Label      string `json:"label"`
	Headline   string `json:"headline"`
	Subtext    string `json:"subtext,omitempty"`
	Face       string `json:"face,omitempty"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
	Alert      bool   `json:"alert"`
	Glow       bool   `json:"glow"`
}

// Table maps status strings to theme entries. It is read-only after
// construction and safe for concurrent use.
type Table struct {
	variant string
	entries map[string]ThemeEntry
	normal  ThemeEntry
	alert   ThemeEntry
}

// NewTable builds the status table for a presentation variant.
func NewTable(v theme.Variant) *Table {
	normal := entryFrom(StatusNormal, v.Normal, false, false)
	alert := entryFrom(StatusSlouching, v.Alert, true, v.Glow)
	return &Table{
		variant: v.Name,
		entries: map[string]ThemeEntry{
			StatusNormal:    normal,
			StatusSlouching: alert,
		},
		normal: normal,
		alert:  alert,
	}
}

func entryFrom(status string, s theme.StateStyle, alert, glow bool) ThemeEntry {
	return ThemeEntry{
		Status:     status,
		Label:      s.Label,
		Headline:   s.Headline,
		Subtext:    s.Subtext,
		Face:       s.Face,
		Background: s.Background,
		Text:       s.Text,
		Accent:     s.Accent,
		Alert:      alert,
		Glow:       glow,
	}
}

// Variant returns the name of the variant the table was built from.
func (t *Table) Variant() string { return t.variant }

// Resolve returns the theme entry for status. Exact keys win; otherwise any
// status containing "Warning" resolves to the alert entry and everything
// else to the normal entry. Resolve never fails.
func (t *Table) Resolve(status string) ThemeEntry {
	if e, ok := t.entries[status]; ok {
		return e
	}
	if strings.Contains(status, alertMarker) {
		return t.alert
	}
	return t.normal
}

// Normal returns the default entry.
func (t *Table) Normal() ThemeEntry { return t.normal }

// Alert returns the alert entry.
func (t *Table) Alert() ThemeEntry { return t.alert }
