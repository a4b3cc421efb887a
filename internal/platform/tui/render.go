package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// bar renders a fixed-width gauge of value out of total.
func bar(value, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(width, max(0, value)*width/total)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
