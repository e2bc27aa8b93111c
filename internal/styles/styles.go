// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorRed    = lipgloss.Color("#f7768e")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Symbols used when printing results.
const (
	Check = "✓"
	Cross = "✗"
)

// TitleStyle styles headers.
var TitleStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// SuccessStyle styles positive outcomes.
var SuccessStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// WarningStyle styles transitional states.
var WarningStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// ErrorStyle styles failures.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// MutedStyle styles secondary text such as timestamps and help.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// TextStyle styles regular content.
var TextStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)
