package site

import (
	"github.com/charmbracelet/lipgloss"

	"gdprcheck/internal/catalog"
	"gdprcheck/internal/render"
)

var nameStyle = lipgloss.NewStyle().Bold(true)

// statusStyle colours console output with the verdict's accent colour.
func statusStyle(c catalog.Compliance) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(string(render.StatusFor(c).Color)))
}

// progressLine formats "<glyph> <name> → <dest>". Styling is dropped by
// lipgloss when the output is not a terminal.
func progressLine(t catalog.Tool, dest string) string {
	glyph := statusStyle(t.Compliant).Render(render.StatusFor(t.Compliant).Glyph)
	return glyph + " " + nameStyle.Render(t.Name) + " → " + dest
}
