package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	colorSecondary = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#cba6f7"} // Mauve
	colorWarning   = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	colorError     = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	colorMuted     = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
)

// outputStyles holds the lipgloss styles used by command output.
type outputStyles struct {
	Title    lipgloss.Style
	Library  lipgloss.Style
	Letter   lipgloss.Style
	Key      lipgloss.Style
	Category lipgloss.Style
	Muted    lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
}

var styles = defaultStyles()

func defaultStyles() outputStyles {
	return outputStyles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary),

		Library: lipgloss.NewStyle().
			Foreground(colorSecondary),

		Letter: lipgloss.NewStyle().
			Bold(true),

		Key: lipgloss.NewStyle().
			Foreground(colorPrimary),

		Category: lipgloss.NewStyle().
			Foreground(colorSecondary).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),

		Warning: lipgloss.NewStyle().
			Foreground(colorWarning),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),
	}
}
