package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the color palette for all studyfocus TUIs
type Theme struct {
	Name string

	// Base Colors
	CardBackground lipgloss.Color
	Border         lipgloss.Color

	// Text Colors
	PrimaryText   lipgloss.Color // titles, user input
	SecondaryText lipgloss.Color
	DisabledText  lipgloss.Color
	HelpText      lipgloss.Color

	// Accent Colors
	AccentMain   lipgloss.Color // logo, active borders, work phase
	AccentBright lipgloss.Color // highlights, the big clock
	AccentBreak  lipgloss.Color // break phase

	// State Colors
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}

// DarkTheme is the purple theme for dark terminals
var DarkTheme = Theme{
	Name:           "dark",
	CardBackground: "#1B1530", // Dark purple
	Border:         "#3A3F55", // Grey-blue
	PrimaryText:    "#E6EAF2",
	SecondaryText:  "#B1B8C7",
	DisabledText:   "#6D7383",
	HelpText:       "240",
	AccentMain:     "#7C3AED",
	AccentBright:   "#A78BFA",
	AccentBreak:    "#2DD4BF",
	Error:          "#EF4444",
	Success:        "#22C55E",
	Warning:        "#F59E0B",
}

// LightTheme keeps the same accents with darker text for light terminals
var LightTheme = Theme{
	Name:           "light",
	CardBackground: "#F5F3FF",
	Border:         "#C4B5FD",
	PrimaryText:    "#1F2937",
	SecondaryText:  "#4B5563",
	DisabledText:   "#9CA3AF",
	HelpText:       "245",
	AccentMain:     "#6D28D9",
	AccentBright:   "#7C3AED",
	AccentBreak:    "#0F766E",
	Error:          "#DC2626",
	Success:        "#16A34A",
	Warning:        "#D97706",
}

// ThemeFor returns the theme with the given name, dark by default
func ThemeFor(name string) Theme {
	if name == LightTheme.Name {
		return LightTheme
	}
	return DarkTheme
}

// fg is a shorthand for a foreground-only style
func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}
