// Package ansi makes model output safe to write to a terminal using the
// charmbracelet/x/ansi parser.
package ansi

import (
	"strings"
	"unicode"

	xansi "github.com/charmbracelet/x/ansi"
)

// Sanitize strips escape sequences (CSI, OSC and the rest) and control
// characters from s. Tabs and newlines are kept. CRLF and lone CR both
// become LF.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = xansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}
