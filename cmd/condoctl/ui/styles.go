// Package ui implements the interactive data editor: a terminal table
// editor over the staging store, with cell editing, search, sorting and
// a staged apply/discard workflow.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorPrimary = lipgloss.Color("63")  // indigo
	colorMuted   = lipgloss.Color("241") // gray
	colorDirty   = lipgloss.Color("178") // amber
	colorNew     = lipgloss.Color("42")  // green
	colorError   = lipgloss.Color("196")
	colorCursor  = lipgloss.Color("229")
)

// Styles collects every lipgloss style the editor renders with.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	Header     lipgloss.Style
	HeaderSort lipgloss.Style
	Cell       lipgloss.Style
	CellDirty  lipgloss.Style
	CellNew    lipgloss.Style
	Cursor     lipgloss.Style

	Success   lipgloss.Style
	Error     lipgloss.Style
	StatusBar lipgloss.Style
	Badge     lipgloss.Style
}

// DefaultStyles returns the editor's default styling.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Subtitle: lipgloss.NewStyle().Foreground(colorMuted),
		Body:     lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Bold:     lipgloss.NewStyle().Bold(true),

		Header:     lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		HeaderSort: lipgloss.NewStyle().Bold(true).Foreground(colorCursor),
		Cell:       lipgloss.NewStyle(),
		CellDirty:  lipgloss.NewStyle().Foreground(colorDirty),
		CellNew:    lipgloss.NewStyle().Foreground(colorNew),
		Cursor:     lipgloss.NewStyle().Reverse(true),

		Success:   lipgloss.NewStyle().Foreground(colorNew).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(colorError).Bold(true),
		StatusBar: lipgloss.NewStyle().Foreground(colorMuted),
		Badge: lipgloss.NewStyle().Background(colorPrimary).
			Foreground(lipgloss.Color("231")).Padding(0, 1).Bold(true),
	}
}
