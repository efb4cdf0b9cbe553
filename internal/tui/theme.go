package tui

import (
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/trove/internal/config"
)

// Theme holds the styles of the picker and the fill screen.
type Theme struct {
	QueryPrefix string

	Primary  lipgloss.Style // active parameter
	Command  lipgloss.Style // template text
	Title    lipgloss.Style
	Prompt   lipgloss.Style
	Selected lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
}

// NewTheme builds a theme from the two configurable colours.
func NewTheme(primary, command, queryPrefix string) Theme {
	primaryColor := lipgloss.Color(primary)
	commandColor := lipgloss.Color(command)
	dim := lipgloss.Color("#7f849c")

	return Theme{
		QueryPrefix: queryPrefix,
		Primary:     lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Underline(true),
		Command:     lipgloss.NewStyle().Foreground(commandColor),
		Title:       lipgloss.NewStyle().Foreground(primaryColor).Bold(true),
		Prompt:      lipgloss.NewStyle().Foreground(primaryColor),
		Selected:    lipgloss.NewStyle().Foreground(primaryColor).Bold(true),
		Dim:         lipgloss.NewStyle().Foreground(dim),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
	}
}

// ThemeFromConfig builds the theme configured in cfg.
func ThemeFromConfig(cfg *config.Config) Theme {
	return NewTheme(cfg.PrimaryColor, cfg.CommandColor, cfg.QueryPrefix)
}
