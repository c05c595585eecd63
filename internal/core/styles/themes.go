package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by tui.theme.
const (
	ThemeDefault      = "default"
	ThemeHighContrast = "high-contrast"
)

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	ThemeDefault: {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	// Pure black and white with saturated accents for low-vision users.
	ThemeHighContrast: {
		Primary:    lipgloss.Color("#ffff00"),
		Secondary:  lipgloss.Color("#00ffff"),
		Foreground: lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#d0d0d0"),
		Background: lipgloss.Color("#000000"),
		Surface:    lipgloss.Color("#ffffff"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff4040"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// ThemeFor picks the palette for the configured theme, forcing the high
// contrast palette when highContrast is set.
func ThemeFor(name string, highContrast bool) Palette {
	if highContrast {
		return themes[ThemeHighContrast]
	}
	if p, ok := themes[name]; ok {
		return p
	}
	return themes[ThemeDefault]
}
