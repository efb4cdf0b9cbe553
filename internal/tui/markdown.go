package tui

import (
	"strings"

	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
)

// RenderMarkdown renders a command description for the terminal. It falls
// back to plain wrapped text if rendering fails.
func RenderMarkdown(content string, width int) string {
	if width <= 0 || width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	return strings.TrimSuffix(rendered, "\n")
}

func wrapText(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(content)
}
