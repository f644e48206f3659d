package theme

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// tomlVariant is the TOML-serializable representation of a Variant.
type tomlVariant struct {
	Name   string    `toml:"name"`
	Glow   bool      `toml:"glow"`
	Normal tomlState `toml:"normal"`
	Alert  tomlState `toml:"alert"`
}

type tomlState struct {
	Label      string `toml:"label"`
	Headline   string `toml:"headline"`
	Subtext    string `toml:"subtext,omitempty"`
	Face       string `toml:"face,omitempty"`
	Background string `toml:"background"`
	Text       string `toml:"text"`
	Accent     string `toml:"accent"`
}

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a TOML variant definition from raw bytes.
func LoadFromTOML(data []byte) (Variant, error) {
	var tv tomlVariant
	if err := toml.Unmarshal(data, &tv); err != nil {
		return Variant{}, fmt.Errorf("theme: parse TOML: %w", err)
	}

	v := Variant{
		Name:   tv.Name,
		Glow:   tv.Glow,
		Normal: StateStyle(tv.Normal),
		Alert:  StateStyle(tv.Alert),
	}
	if err := validateVariant(v); err != nil {
		return Variant{}, err
	}
	return v, nil
}

// LoadFile reads and parses a TOML variant file.
func LoadFile(path string) (Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Variant{}, fmt.Errorf("theme: read %s: %w", path, err)
	}
	return LoadFromTOML(data)
}

// SaveToTOML serializes a variant to TOML bytes.
func SaveToTOML(v Variant) ([]byte, error) {
	tv := tomlVariant{
		Name:   v.Name,
		Glow:   v.Glow,
		Normal: tomlState(v.Normal),
		Alert:  tomlState(v.Alert),
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tv); err != nil {
		return nil, fmt.Errorf("theme: encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// validateVariant checks that labels are present and every colour is #RRGGBB.
func validateVariant(v Variant) error {
	if v.Name == "" {
		return fmt.Errorf("theme: missing required field %q", "name")
	}
	for section, s := range map[string]StateStyle{"normal": v.Normal, "alert": v.Alert} {
		if s.Label == "" {
			return fmt.Errorf("theme: missing required field %q", section+".label")
		}
		if s.Headline == "" {
			return fmt.Errorf("theme: missing required field %q", section+".headline")
		}
		colors := map[string]string{
			"background": s.Background,
			"text":       s.Text,
			"accent":     s.Accent,
		}
		for field, value := range colors {
			if !hexColorRegex.MatchString(value) {
				return fmt.Errorf("theme: invalid hex color %q for field %q (expected #RRGGBB)",
					value, section+"."+field)
			}
		}
	}
	return nil
}
