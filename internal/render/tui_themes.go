package render

import "github.com/charmbracelet/lipgloss"

// TUITheme is the color scheme of the chat interface.
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	// ClinicTheme is the default: deep navy with teal and medical blue.
	ClinicTheme = TUITheme{
		Name:        "clinic",
		Description: "Clinic - navy background, teal and blue accents",

		Background: lipgloss.Color("#0f1b2d"),
		Surface:    lipgloss.Color("#16263d"),
		Border:     lipgloss.Color("#2f4a6b"),

		Primary:   lipgloss.Color("#3fb6c6"),
		Secondary: lipgloss.Color("#5aa9f0"),
		Accent:    lipgloss.Color("#7fd8a6"),
		Warning:   lipgloss.Color("#f2c14e"),
		Error:     lipgloss.Color("#ef6f6c"),

		Text:     lipgloss.Color("#e3edf7"),
		TextDim:  lipgloss.Color("#7c93ad"),
		TextMute: lipgloss.Color("#3c5674"),
	}

	// NordTheme uses the Nord palette.
	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - arctic blues",

		Background: lipgloss.Color("#2e3440"),
		Surface:    lipgloss.Color("#3b4252"),
		Border:     lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#81a1c1"),
		Accent:    lipgloss.Color("#a3be8c"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),
	}

	// HighContrastTheme favors legibility over color.
	HighContrastTheme = TUITheme{
		Name:        "contrast",
		Description: "High contrast - white on black",

		Background: lipgloss.Color("#000000"),
		Surface:    lipgloss.Color("#1a1a1a"),
		Border:     lipgloss.Color("#ffffff"),

		Primary:   lipgloss.Color("#00d7ff"),
		Secondary: lipgloss.Color("#ffff00"),
		Accent:    lipgloss.Color("#00ff87"),
		Warning:   lipgloss.Color("#ffaf00"),
		Error:     lipgloss.Color("#ff5f5f"),

		Text:     lipgloss.Color("#ffffff"),
		TextDim:  lipgloss.Color("#c6c6c6"),
		TextMute: lipgloss.Color("#8a8a8a"),
	}
)

var currentTUITheme = ClinicTheme

// GetTUITheme returns the active theme.
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme activates the named theme. Unknown names leave the active
// theme unchanged and return false.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if ok {
		currentTUITheme = theme
	}
	return ok
}

// GetTUIThemeByName looks a theme up by name.
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes lists the built-in themes, default first.
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{ClinicTheme, NordTheme, HighContrastTheme}
}

// TUIThemeNames returns the names of AvailableTUIThemes.
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
