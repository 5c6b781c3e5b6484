package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the colors for one theme. darkMode switches between them.
type palette struct {
	accent    lipgloss.Color
	text      lipgloss.Color
	muted     lipgloss.Color
	comment   lipgloss.Color
	border    lipgloss.Color
	selection lipgloss.Color
	success   lipgloss.Color
	danger    lipgloss.Color
	warning   lipgloss.Color
}

var (
	darkPalette = palette{
		accent:    lipgloss.Color("170"),
		text:      lipgloss.Color("252"),
		muted:     lipgloss.Color("245"),
		comment:   lipgloss.Color("242"),
		border:    lipgloss.Color("240"),
		selection: lipgloss.Color("238"),
		success:   lipgloss.Color("82"),
		danger:    lipgloss.Color("196"),
		warning:   lipgloss.Color("214"),
	}
	lightPalette = palette{
		accent:    lipgloss.Color("90"),
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("240"),
		comment:   lipgloss.Color("244"),
		border:    lipgloss.Color("250"),
		selection: lipgloss.Color("254"),
		success:   lipgloss.Color("28"),
		danger:    lipgloss.Color("160"),
		warning:   lipgloss.Color("166"),
	}
)

func paletteFor(dark bool) palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

func formatHelpText(help []string) string {
	return strings.Join(help, " • ")
}

func formatConfirmOptions(destructive bool) string {
	yes := lipgloss.NewStyle().Bold(true).Foreground(darkPalette.success)
	no := lipgloss.NewStyle().Bold(true).Foreground(darkPalette.danger)
	if destructive {
		yes, no = no.Foreground(darkPalette.danger), yes.Foreground(darkPalette.success)
	}
	return yes.Render("[Y]es") + "  " + no.Render("[N]o")
}
