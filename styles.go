package main

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW        = 9 // width of each column in characters
	labelVisualW = 7 // visual width of qubit label area
	gateNameW    = 3 // width of gate name inside box
	gateBoxW     = 5 // ┤ + gateNameW + ├
	barW         = 20
)

// Lipgloss styles used across the viewer and the styled report.
var (
	circuitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(1)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	cursorBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff9e64")).
			Bold(true)

	appliedColumnStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e0af68"))

	issueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	catalogBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#ff9e64")).
				Padding(0, 1)

	catalogNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0caf5"))

	basisLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	amplitudeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	probBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a"))
)
