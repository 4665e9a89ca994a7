package bubbletea

import (
	"strings"

	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// wrap word-wraps text to width display cells. Existing line breaks are
// kept. Words wider than a row are broken between grapheme clusters.
func wrap(text string, width int) string {
	if width <= 0 || text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	var (
		rows []string
		row  strings.Builder
		rowW int
	)
	flush := func() {
		rows = append(rows, row.String())
		row.Reset()
		rowW = 0
	}

	for i, word := range strings.Split(line, " ") {
		w := uniseg.StringWidth(word)
		if i > 0 {
			if rowW+1+w <= width {
				row.WriteByte(' ')
				rowW++
			} else if rowW > 0 {
				flush()
			}
		}
		if w <= width {
			row.WriteString(word)
			rowW += w
			continue
		}
		g := uniseg.NewGraphemes(word)
		for g.Next() {
			cluster := g.Str()
			cw := rw.StringWidth(cluster)
			if rowW+cw > width && rowW > 0 {
				flush()
			}
			row.WriteString(cluster)
			rowW += cw
		}
	}
	flush()
	return rows
}
