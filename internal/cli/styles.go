package cli

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	warningColor = lipgloss.Color("#F59E0B") // Amber
	promptColor  = lipgloss.Color("#7C3AED") // Purple
	mutedColor   = lipgloss.Color("#6B7280") // Gray

	// Bypass warning banner
	warningBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warningColor).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(warningColor)

	// Permission prompt notice
	promptTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(promptColor)

	promptOptionStyle = lipgloss.NewStyle().
				Foreground(promptColor).
				PaddingLeft(2)

	promptContextStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				PaddingLeft(2)
)
