package application

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1).
			MarginBottom(1)

	badgeBase      = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	errorBadge     = badgeBase.Background(lipgloss.Color("160")).Foreground(lipgloss.Color("231"))
	warningBadge   = badgeBase.Background(lipgloss.Color("214")).Foreground(lipgloss.Color("16"))
	duplicateBadge = badgeBase.Background(lipgloss.Color("33")).Foreground(lipgloss.Color("231"))
	okBadge        = badgeBase.Background(lipgloss.Color("28")).Foreground(lipgloss.Color("231"))

	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	headerStyle = cellStyle.Bold(true).Underline(true)
)
