package utils

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Report palette. Failures are critical, clean archives good.
var (
	CriticalColor = lipgloss.Color("#CC3333")
	WarningColor  = lipgloss.Color("#FF8800")
	GoodColor     = lipgloss.Color("#228B22")
	InfoColor     = lipgloss.Color("#4682B4")
	MutedColor    = lipgloss.Color("#888888")
)

var (
	CriticalStyle = lipgloss.NewStyle().Foreground(CriticalColor).Bold(true)
	GoodStyle     = lipgloss.NewStyle().Foreground(GoodColor).Bold(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	TitleStyle    = lipgloss.NewStyle().Bold(true)
)

// Tab bar and help line of the interactive report.
var (
	TabActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(InfoColor).Padding(0, 1).Bold(true)
	TabInactiveStyle = lipgloss.NewStyle().Foreground(MutedColor).Padding(0, 1)
	HelpBarStyle     = lipgloss.NewStyle().Foreground(MutedColor).Padding(0, 1)
)

// CategoryColor picks a stable color for a fact category so the same
// category looks the same in every view.
func CategoryColor(category string) lipgloss.Color {
	palette := []lipgloss.Color{InfoColor, GoodColor, WarningColor, CriticalColor, "#8A6FBF", "#3FA7A0", "#B5A642"}
	sum := 0
	for _, r := range category {
		sum += int(r)
	}
	return palette[sum%len(palette)]
}

// CreateProgressBar renders percentage (0..1) as a bar of width cells.
func CreateProgressBar(percentage float64, width int, color lipgloss.Color) string {
	if width < 4 {
		return fmt.Sprintf("%.0f%%", percentage*100)
	}
	filled := min(max(int(percentage*float64(width)+0.5), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if color != "" {
		bar = lipgloss.NewStyle().Foreground(color).Render(bar)
	}
	return bar
}

// TruncateString shortens s to maxWidth runes, ending in "...".
func TruncateString(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		return strings.Repeat(".", max(maxWidth, 0))
	}
	return string(runes[:maxWidth-3]) + "..."
}
