// Package goldmark renders markdown replies to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import "github.com/fwojciec/chatstream"

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, list items and block quotes are word-wrapped to width. Code
// blocks are rendered at full width without reflow.
func Render(source string, width int, theme chatstream.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
