// Package display renders the list/status tables shpctl prints to the
// terminal, grounded on maiko-SDBX's internal/tui table and style
// helpers. This is deliberately the only package depending on
// charmbracelet/lipgloss: spec.md treats colored output and table
// rendering as presentation, out of the core's scope, so styling stays
// confined to this thin layer and every other package works in terms
// of plain Go values.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Table renders rows of equal length under header as a padded,
// lipgloss-styled table. Porcelain mode skips all styling/padding and
// writes tab-separated columns instead, for scripts (spec.md §6
// --porcelain).
func Table(header []string, rows [][]string, porcelain bool) string {
	if porcelain {
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		return b.String()
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = style.Render(fmt.Sprintf("%-*s", widths[i], c))
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteByte('\n')
	}

	writeRow(header, headerStyle)
	for _, row := range rows {
		writeRow(row, lipgloss.NewStyle())
	}
	return b.String()
}

// StateStyle highlights a running/stopped state for terminal display.
func StateStyle(state string) string {
	switch strings.ToLower(state) {
	case "running", "up":
		return okStyle.Render(state)
	case "stopped", "down", "exited", "":
		return mutedStyle.Render(valueOr(state, "stopped"))
	default:
		return warnStyle.Render(state)
	}
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
