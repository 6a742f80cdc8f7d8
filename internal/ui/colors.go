package ui

import "github.com/charmbracelet/lipgloss"

// Palette holds the [lipgloss.Style] set shared by every view.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = &Palette{
	title: fg("#5A9CF8").Bold(true).MarginBottom(1),
	ok:    fg("#2BB673").Bold(true),
	err:   fg("#E5484D").Bold(true),
	warn:  fg("#F5A623"),
	help:  fg("#6B6B6B").Italic(true),
}

func fg(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
