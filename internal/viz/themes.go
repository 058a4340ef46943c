package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the terminal views. Positive and Negative
// color signed field values.
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Positive lipgloss.Color
	Negative lipgloss.Color
	Particle lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
}

var (
	ThemePlasma = Theme{
		Name:     "plasma",
		Primary:  lipgloss.Color("#00ffff"),
		Positive: lipgloss.Color("#ff5f87"),
		Negative: lipgloss.Color("#5f87ff"),
		Particle: lipgloss.Color("#ffff5f"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666688"),
		Success:  lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff4444"),
	}

	ThemePhosphor = Theme{
		Name:     "phosphor",
		Primary:  lipgloss.Color("#00ff00"),
		Positive: lipgloss.Color("#88ff88"),
		Negative: lipgloss.Color("#008800"),
		Particle: lipgloss.Color("#ccffcc"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Success:  lipgloss.Color("#88ff88"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeMono = Theme{
		Name:     "mono",
		Primary:  lipgloss.Color("#ffffff"),
		Positive: lipgloss.Color("#ffffff"),
		Negative: lipgloss.Color("#888888"),
		Particle: lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Success:  lipgloss.Color("#00ff00"),
		Warning:  lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemePlasma

	Themes = []Theme{ThemePlasma, ThemePhosphor, ThemeMono}
)

// GetTheme falls back to plasma for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemePlasma
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one and returns it.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme
		}
	}
	CurrentTheme = ThemePlasma
	return CurrentTheme
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
