package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// StyleManager encapsulates all TUI styles
type StyleManager struct {
	// List view styles
	Template lipgloss.Style
	Entity   lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style

	// Preview styles
	PreviewHeader lipgloss.Style
	PreviewBody   lipgloss.Style

	// Report styles used by the check command
	OK    lipgloss.Style
	Error lipgloss.Style
	Code  lipgloss.Style

	// Chrome styles
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Template:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Entity:        lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Cursor:        lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		PreviewHeader: lipgloss.NewStyle().Bold(true),
		PreviewBody:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		OK:            lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Code:          lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Divider:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:    lipgloss.Color("236"),
	}
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// Global style manager instance
var styles = DefaultStyles()

// Styles returns the shared style manager
func Styles() *StyleManager {
	return styles
}
