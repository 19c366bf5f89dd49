package pipeline

import (
	"regexp"
	"strings"
)

type emphasis struct {
	delim string
	open  string
	close string
}

// emphases are applied in this order so that doubled delimiters are
// consumed before their single forms.
var emphases = []emphasis{
	{"==", "<b><code>", "</code></b>"},
	{"__", "<b><i>", "</i></b>"},
	{"*", "<b>", "</b>"},
	{"_", "<i>", "</i>"},
	{"=", "<code>", "</code>"},
}

// structuralTag matches the engine-generated tags emphasis may not span.
var structuralTag = regexp.MustCompile(`</?(?:td|th|tr|li|dt|dd|h[1-6]|p|table|thead|tbody|ul|ol|dl|div|hr)[\s/>]`)

func applyEmphasis(text string) string {
	for _, e := range emphases {
		if strings.Contains(text, e.delim) {
			text = e.apply(text)
		}
	}
	return text
}

// apply rewrites every delim...delim span that opens and closes on a word
// boundary, has no whitespace just inside the delimiters and stays on one
// line. The shortest valid span wins.
func (e emphasis) apply(text string) string {
	n := len(e.delim)
	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		if !strings.HasPrefix(text[i:], e.delim) || !openBoundary(text, i) {
			b.WriteByte(text[i])
			i++
			continue
		}
		end := e.closing(text, i+n)
		if end < 0 {
			b.WriteString(e.delim)
			i += n
			continue
		}
		b.WriteString(e.open)
		b.WriteString(text[i+n : end])
		b.WriteString(e.close)
		i = end + n
	}
	return b.String()
}

// closing returns the offset of the delimiter closing a span whose content
// starts at from, or -1.
func (e emphasis) closing(text string, from int) int {
	n := len(e.delim)
	if from >= len(text) || isSpace(text[from]) || text[from] == e.delim[0] {
		return -1
	}
	for j := from + 1; j+n <= len(text); j++ {
		c := text[j-1]
		if c == '\n' {
			return -1
		}
		if !strings.HasPrefix(text[j:], e.delim) || isSpace(c) || !closeBoundary(text, j+n) {
			continue
		}
		if structuralTag.MatchString(text[from:j]) {
			return -1
		}
		return j
	}
	return -1
}

func openBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	switch text[i-1] {
	case ' ', '\t', '\n', '(', '>', tokenChar[0]:
		return true
	}
	return false
}

func closeBoundary(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	switch text[i] {
	case ' ', '\t', '\n', ',', '.', ';', ':', '!', '?', ')', '<', tokenChar[0]:
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
