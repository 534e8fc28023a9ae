package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorBlue  = lipgloss.Color("75")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleValue   = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim).Width(10)
)

const (
	iconFound   = "✓"
	iconMissing = "✗"
)

// field renders an aligned "label value" line; empty values are shown as a
// dimmed dash.
func field(label, value string, style lipgloss.Style) string {
	if value == "" {
		return styleLabel.Render(label) + styleDim.Render("-")
	}

	return styleLabel.Render(label) + style.Render(value)
}
