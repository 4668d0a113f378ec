package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorHeader    = lipgloss.Color("205")
	ColorActive    = lipgloss.Color("212")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorError     = lipgloss.Color("196")
	ColorHighlight = lipgloss.Color("86")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	entryStyle    = lipgloss.NewStyle().Foreground(ColorValue)

	activePageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(ColorActive).
			Bold(true).
			Padding(0, 1)
	pageStyle = lipgloss.NewStyle().
			Foreground(ColorValue).
			Padding(0, 1)
	disabledStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(ColorLabel)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(ColorMuted)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHeader).
			Padding(1, 2)
)
