package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for terminal output. Each field holds an
// ANSI escape sequence.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker colors for light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// Styles are the lipgloss styles used for boxed summaries and tables.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}

type palette struct {
	accent, dim, text, success, warning, err lipgloss.TerminalColor
}

var (
	darkPalette = palette{
		accent:  lipgloss.Color("39"),
		dim:     lipgloss.Color("245"),
		text:    lipgloss.Color("252"),
		success: lipgloss.Color("82"),
		warning: lipgloss.Color("220"),
		err:     lipgloss.Color("196"),
	}
	lightPalette = palette{
		accent:  lipgloss.Color("27"),
		dim:     lipgloss.Color("240"),
		text:    lipgloss.Color("235"),
		success: lipgloss.Color("28"),
		warning: lipgloss.Color("130"),
		err:     lipgloss.Color("124"),
	}
	noColorPalette = palette{
		accent:  lipgloss.NoColor{},
		dim:     lipgloss.NoColor{},
		text:    lipgloss.NoColor{},
		success: lipgloss.NoColor{},
		warning: lipgloss.NoColor{},
		err:     lipgloss.NoColor{},
	}
)

// CurrentStyles returns lipgloss styles matching the active theme.
func CurrentStyles() Styles {
	var p palette
	switch GetCurrentTheme().Name {
	case "none":
		p = noColorPalette
	case "light":
		p = lightPalette
	default:
		p = darkPalette
	}
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Label:   lipgloss.NewStyle().Foreground(p.dim),
		Value:   lipgloss.NewStyle().Foreground(p.text),
		Success: lipgloss.NewStyle().Foreground(p.success),
		Warning: lipgloss.NewStyle().Foreground(p.warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.err),
		Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(0, 1),
	}
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the active theme. Mostly used by tests to restore
// state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name ("dark", "light" or "none"). Unknown
// names select the dark theme.
func SetTheme(name string) {
	switch name {
	case "light":
		SetCurrentTheme(LightTheme)
	case "none":
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme disables colors when noColor is set or NO_COLOR is present in
// the environment (https://no-color.org/), and selects the dark theme
// otherwise.
func InitTheme(noColor bool) {
	if _, exists := os.LookupEnv("NO_COLOR"); noColor || exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
