package chart

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Chart colors: green rising, red falling, orange SMA, blue bands.
const (
	colorRising    = lipgloss.Color("#2ECC71")
	colorFalling   = lipgloss.Color("#E74C3C")
	colorSma       = lipgloss.Color("#FFA500")
	colorBollinger = lipgloss.Color("#5DADE2")
	colorAxis      = lipgloss.Color("240")
)

// Styles groups the lipgloss styles of a chart.
type Styles struct {
	Title   lipgloss.Style
	Company lipgloss.Style
	Label   lipgloss.Style
	Axis    lipgloss.Style
	Rising  lipgloss.Style
	Falling lipgloss.Style
	Sma     lipgloss.Style
	Band    lipgloss.Style
	Faint   lipgloss.Style
}

// NewStyles builds styles for the color profile detected on w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)

	return Styles{
		Title:   r.NewStyle().Bold(true),
		Company: r.NewStyle().Bold(true).Underline(true),
		Label:   r.NewStyle().Faint(true),
		Axis:    r.NewStyle().Foreground(colorAxis),
		Rising:  r.NewStyle().Foreground(colorRising),
		Falling: r.NewStyle().Foreground(colorFalling),
		Sma:     r.NewStyle().Foreground(colorSma),
		Band:    r.NewStyle().Foreground(colorBollinger),
		Faint:   r.NewStyle().Faint(true),
	}
}
