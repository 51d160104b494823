package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))

	// CursorStyle marks the focused indicator row.
	CursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
)

// FormatCloseWithChange formats a close with an arrow against the previous close.
// An unchanged close gets no arrow.
func FormatCloseWithChange(current, previous float64) string {
	priceStr := fmt.Sprintf("%.2f", current)

	if previous == 0 {
		return priceStr
	}

	if current > previous {
		return priceStr + " ▲"
	} else if current < previous {
		return priceStr + " ▼"
	}

	return priceStr
}
