package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dim    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	danger = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	statusStyle = lipgloss.NewStyle().Foreground(dim)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(danger).
				Padding(0, 1)

	fieldErrorStyle = lipgloss.NewStyle().Foreground(danger)

	labelStyle = lipgloss.NewStyle().Width(12).Foreground(dim)

	focusedLabelStyle = labelStyle.Foreground(accent).Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)
