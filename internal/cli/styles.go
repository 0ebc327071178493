package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("14")
	colorGreen  = lipgloss.Color("82")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("196")
	colorCheck  = lipgloss.Color("10")
)

var (
	// styleNoun marks things the user named: targets, directories, URLs.
	styleNoun    = lipgloss.NewStyle().Foreground(colorCyan)
	styleAction  = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Faint(true)
	styleSummary = lipgloss.NewStyle().Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleCheck   = lipgloss.NewStyle().Foreground(colorCheck)
)

// File outcomes of a sync.
const (
	statusUploaded  = "uploaded"
	statusUnchanged = "unchanged"
	statusDeleted   = "deleted"
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case statusUploaded:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case statusUnchanged:
		return styleDim
	case statusDeleted:
		return lipgloss.NewStyle().Foreground(colorRed)
	default:
		return lipgloss.NewStyle()
	}
}

// fileLine renders a remote object name with a right-aligned status.
func fileLine(name, status string) string {
	const column = 48
	padding := column - len(name)
	if padding < 2 {
		padding = 2
	}
	return styleDim.Render("f:") + styleNoun.Render(name) + strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

func checkmark(msg string) string {
	return styleCheck.Render("✔") + " " + msg
}
