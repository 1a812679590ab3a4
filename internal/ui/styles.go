package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all lipgloss styles for terminal output
type Styles struct {
	enabled bool

	// Status styles
	Accent  lipgloss.Style
	Success lipgloss.Style
	Alert   lipgloss.Style
	Warning lipgloss.Style

	// Structural styles
	Path  lipgloss.Style
	Muted lipgloss.Style

	// Icons (dropped when not interactive)
	IconScan    string
	IconSuccess string
	IconFound   string
	IconWarning string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged and icons are empty
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))  // Blue
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("#169B3C")) // Green
		s.Alert = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))   // Red
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))      // Yellow

		s.Path = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

		s.IconScan = "\u2771"    // ❱
		s.IconSuccess = "\u2714" // ✔
		s.IconFound = "\u2757"   // ❗
		s.IconWarning = "\u26a0" // ⚠
	} else {
		s.Accent = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()
		s.Alert = lipgloss.NewStyle()
		s.Warning = lipgloss.NewStyle()

		s.Path = lipgloss.NewStyle()
		s.Muted = lipgloss.NewStyle()
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}

// Status renders text behind an optional styled icon. Without an icon
// the text is returned unchanged.
func (s *Styles) Status(style lipgloss.Style, icon, text string) string {
	if icon == "" {
		return text
	}
	return " " + style.Render(icon) + " " + text
}
