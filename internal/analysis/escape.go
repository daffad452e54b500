package analysis

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var textContentEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML returns s as the browser serialises a text node: only &, < and >
// are replaced.
func EscapeHTML(s string) string {
	return textContentEscaper.Replace(s)
}

// SanitizeTerminal strips escape sequences and control characters other than
// newline and tab, so server text cannot drive the terminal.
func SanitizeTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		}
		return r
	}, s)
}
