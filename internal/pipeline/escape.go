package pipeline

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// EscapeVerbatim makes text inert for both the editor and the markup
// parser: newlines become <br />, spaces become &nbsp;, and control
// characters, angle brackets, ampersands and quotes become numeric
// character references.
//
// Bytes that are not valid UTF-8 are copied through unchanged.
//
// The function is not idempotent. Applying it to its own output escapes
// the entities it produced.
func EscapeVerbatim(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteByte(text[i])
		case r == '\n':
			b.WriteString("<br />")
		case r == ' ':
			b.WriteString("&nbsp;")
		case r < 0x20, r == 0x7f, r == '<', r == '>', r == '&', r == '\'', r == '"':
			b.WriteString("&#")
			b.WriteString(strconv.Itoa(int(r)))
			b.WriteString(";")
		default:
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	return b.String()
}
