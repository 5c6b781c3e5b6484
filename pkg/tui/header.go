package tui

import (
	"github.com/charmbracelet/lipgloss"
)

const appName = "proxydesk"

// renderHeader puts the view title on the left and the app name on the
// right, padded like the panes below it
func renderHeader(width int, title string, p palette) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	nameStyle := lipgloss.NewStyle().Foreground(p.muted)

	left := titleStyle.Render(title)
	right := nameStyle.Render(appName)

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right))
}
