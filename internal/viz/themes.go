package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeLab = Theme{
		Name:      "lab",
		Primary:   lipgloss.Color("86"),
		Secondary: lipgloss.Color("49"),
		Accent:    lipgloss.Color("205"),
		Text:      lipgloss.Color("252"),
		Muted:     lipgloss.Color("245"),
		Success:   lipgloss.Color("82"),
		Warning:   lipgloss.Color("220"),
		Error:     lipgloss.Color("196"),
	}

	ThemeChalkboard = Theme{
		Name:      "chalkboard",
		Primary:   lipgloss.Color("#f5f5dc"),
		Secondary: lipgloss.Color("#a8d8b9"),
		Accent:    lipgloss.Color("#ffd166"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#6b8f71"),
		Success:   lipgloss.Color("#a8d8b9"),
		Warning:   lipgloss.Color("#ffd166"),
		Error:     lipgloss.Color("#ef476f"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	CurrentTheme = ThemeLab

	Themes = []Theme{
		ThemeLab,
		ThemeChalkboard,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeLab
}

// SetTheme switches the current theme and rebuilds every style.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
