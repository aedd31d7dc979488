package render

import (
	"strings"

	"github.com/matzehuels/atlas/pkg/errors"
)

// Theme holds the neutral colors of a rendering. Category colors come from
// the layout.
type Theme struct {
	Name       string
	Background string
	TileFill   string
	Text       string
	MutedText  string
	// BoxOpacity is the fill opacity of category boxes.
	BoxOpacity float64
}

var (
	ThemeLight = Theme{Name: "light", Background: "#FAFAF9", TileFill: "#FFFFFF", Text: "#1C1917", MutedText: "#78716C", BoxOpacity: 0.08}
	ThemeDark  = Theme{Name: "dark", Background: "#0C0A09", TileFill: "#1C1917", Text: "#F5F5F4", MutedText: "#A8A29E", BoxOpacity: 0.14}
)

// ParseTheme returns the theme with the given name. An empty name is light.
func ParseTheme(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "", "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidInput, "unknown theme %q (want light or dark)", name)
}
