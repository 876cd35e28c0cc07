// Package lipgloss renders mdstream node trees to ANSI-styled terminal
// output using lipgloss for styling.
package lipgloss

import (
	"strings"

	"github.com/fwojciec/mdstream"
)

// Spinner is the glyph shown next to content that is still streaming.
const Spinner = "⠋"

// Render returns ANSI-styled terminal output for nodes. Paragraphs and list
// items are word-wrapped to width. Code blocks are not reflowed; lines wider
// than width are truncated.
func Render(nodes []mdstream.Node, width int, theme mdstream.Theme) string {
	if len(nodes) == 0 {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return strings.Join(r.blocks(nodes, width), "\n\n")
}
