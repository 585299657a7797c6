package ui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): primary text
// - Accent (soft violet #A78BFA, configurable): highlights, names, values
// - Muted (gray): secondary info, hints
// - No colored success/error/warning; unicode symbols only

const defaultAccent = "#A78BFA"

var (
	// Accent style for entity names, record displays, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis and table headers
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)
)

var (
	accentOverride string
	codeTheme      string

	accentPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|\d{1,3})$`)
)

// ConfigureTheme applies the configured accent color. Invalid values are
// ignored and the default palette stays in effect.
func ConfigureTheme(accent string) {
	if accent == "" || !accentPattern.MatchString(accent) {
		return
	}
	accentOverride = accent
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(accent))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true)
}

// AccentColor returns the effective accent color and whether one is set.
func AccentColor() (string, bool) {
	if accentOverride != "" {
		return accentOverride, true
	}
	return defaultAccent, true
}

// ConfigureMarkdownCodeTheme sets the Chroma theme for markdown code
// blocks.
func ConfigureMarkdownCodeTheme(theme string) {
	codeTheme = theme
}
