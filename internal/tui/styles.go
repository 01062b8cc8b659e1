package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("12")
	colorFocus  = lipgloss.Color("14")
	colorMuted  = lipgloss.Color("8")
	colorText   = lipgloss.Color("7")
	colorOK     = lipgloss.Color("10")
	colorError  = lipgloss.Color("9")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// Labels share a fixed width so the inputs line up.
	labelStyle        = lipgloss.NewStyle().Width(8).Foreground(colorText)
	focusedLabelStyle = labelStyle.Foreground(colorFocus).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	successStyle   = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)
