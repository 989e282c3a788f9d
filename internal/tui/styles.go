package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#5FAFAF")
	secondaryColor = lipgloss.Color("#666666")
	successColor   = lipgloss.Color("#87AF87")
	errorColor     = lipgloss.Color("#AF5F5F")

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SubtleStyle for hints and progress lines
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// PromptStyle for the question being asked
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// BoxStyle for the itinerary panel
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(1, 2)

	// SuccessStyle for the completion line
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)
