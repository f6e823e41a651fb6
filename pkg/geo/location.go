package geo

import (
	"fmt"
	"strings"
)

// LocationData holds a fully resolved place for one render call. It is
// produced by a reverse-geocoding collaborator; the compositor never looks
// anything up itself.
type LocationData struct {
	Lat         float64
	Lng         float64
	District    string
	City        string
	Province    string
	Country     string
	CountryCode string // ISO-3166 alpha-2
	Address     string // full formatted address
}

// IsZero reports whether the location carries no usable position.
func (l LocationData) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0 && l.Address == "" && l.Country == ""
}

// Title returns the most prominent place line, most specific part first.
func (l LocationData) Title() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.District, l.Province, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// FormatCoordinates renders signed decimal degrees with six fractional
// digits, latitude first.
func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// FlagIconName derives the emoji asset name for a 2-letter country code by
// mapping each letter onto its Unicode regional indicator. "ID" becomes
// "u1f1ee_1f1e9".
func FlagIconName(countryCode string) (string, error) {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	if len(cc) != 2 {
		return "", fmt.Errorf("country code must be 2 letters, got %q", countryCode)
	}

	points := make([]string, 0, 2)
	for _, c := range cc {
		if c < 'A' || c > 'Z' {
			return "", fmt.Errorf("country code must be A-Z letters, got %q", countryCode)
		}
		points = append(points, fmt.Sprintf("%x", 0x1F1E6+(c-'A')))
	}
	return "u" + strings.Join(points, "_"), nil
}

// flagIconBase serves the Noto emoji PNG set; regional indicator pairs live
// under png/128 as emoji_<name>.png.
const flagIconBase = "https://raw.githubusercontent.com/googlefonts/noto-emoji/main/png/128"

// FlagIconURL resolves the fetchable flag image URL for a country code.
func FlagIconURL(countryCode string) (string, error) {
	name, err := FlagIconName(countryCode)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/emoji_%s.png", flagIconBase, name), nil
}
