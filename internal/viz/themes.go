package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the viewer. Particles fade from Fresh to Fading as their
// lifetime runs out; well rings use Well.
type Theme struct {
	Name    string
	Fresh   lipgloss.Color
	Fading  lipgloss.Color
	Well    lipgloss.Color
	Heading lipgloss.Color
	Text    lipgloss.Color
}

var (
	ThemeEmber = Theme{
		Name:    "ember",
		Fresh:   lipgloss.Color("#ffff00"),
		Fading:  lipgloss.Color("#ff3300"),
		Well:    lipgloss.Color("#4a9eff"),
		Heading: lipgloss.Color("#ffcc66"),
		Text:    lipgloss.Color("#ffffff"),
	}

	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Fresh:   lipgloss.Color("#00ffff"), // Cyan
		Fading:  lipgloss.Color("#ff00ff"), // Magenta
		Well:    lipgloss.Color("#ffff00"),
		Heading: lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Fresh:   lipgloss.Color("#88ff88"), // Green phosphor
		Fading:  lipgloss.Color("#005500"),
		Well:    lipgloss.Color("#00cc00"),
		Heading: lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#00ff00"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Fresh:   lipgloss.Color("#e0f0ff"),
		Fading:  lipgloss.Color("#0077be"),
		Well:    lipgloss.Color("#ffd700"),
		Heading: lipgloss.Color("#00a8cc"),
		Text:    lipgloss.Color("#e0f0ff"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Fresh:   lipgloss.Color("#ffffff"),
		Fading:  lipgloss.Color("#888888"),
		Well:    lipgloss.Color("#0088ff"),
		Heading: lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#cccccc"),
	}

	CurrentTheme = ThemeEmber

	Themes = []Theme{
		ThemeEmber,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeMinimal,
	}
)

// GetTheme returns the named theme, or ThemeEmber when unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeEmber
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
