package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one rendered table cell with its own style.
type Cell struct {
	Text  string
	Style lipgloss.Style
}

// Table renders tabular data where every cell can carry its own style
// (dirty highlight, new-row highlight, cursor).
type Table struct {
	Headers []Cell
	Rows    [][]Cell
}

// View renders the table with columns sized to their widest cell.
func (t *Table) View(styles Styles) string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h.Text)
	}
	for _, row := range t.Rows {
		for i, c := range row {
			if i < len(widths) {
				if w := lipgloss.Width(c.Text); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	sep := styles.Muted.Render("|")

	var sb strings.Builder
	for i, h := range t.Headers {
		sb.WriteString(h.Style.Padding(0, 1).Width(widths[i]).Render(h.Text))
		if i < len(t.Headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	total := len(t.Headers) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			sb.WriteString(c.Style.Padding(0, 1).Width(widths[i]).Render(c.Text))
			if i < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
