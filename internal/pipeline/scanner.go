package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// scoop is one top-level occurrence of a bracketing tag, nesting included.
type scoop struct {
	// Attrs is the attribute string of the opening tag.
	Attrs string
	Open  string
	Inner string
	// Close is empty when the tag was never closed.
	Close string
}

func (s scoop) whole() string {
	return s.Open + s.Inner + s.Close
}

// tagScanner pairs <name ...> and </name> delimiters with a depth counter.
type tagScanner struct {
	name    string
	pattern *regexp.Regexp
}

func newTagScanner(name string) *tagScanner {
	return &tagScanner{
		name:    name,
		pattern: regexp.MustCompile(`(?i)<(/?)` + regexp.QuoteMeta(name) + `(\s[^>]*)?>`),
	}
}

// Scoop hands every top-level occurrence of the tag to fn and splices in
// the returned replacement. An occurrence left open at end of input takes
// the remainder of the text. Closing tags that pair with nothing are
// replaced by unmatched, or entity-escaped in place when it is nil.
func (s *tagScanner) Scoop(text string, fn func(scoop) string, unmatched func(string) string) string {
	locs := s.pattern.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text
	}
	if unmatched == nil {
		unmatched = html.EscapeString
	}

	var b strings.Builder
	b.Grow(len(text))
	depth, last := 0, 0
	var openStart, openEnd int
	var attrs string
	for _, m := range locs {
		closing := m[3] > m[2]
		if !closing {
			if depth == 0 {
				b.WriteString(text[last:m[0]])
				openStart, openEnd = m[0], m[1]
				attrs = ""
				if m[4] >= 0 {
					attrs = text[m[4]:m[5]]
				}
			}
			depth++
			continue
		}
		if depth == 0 {
			b.WriteString(text[last:m[0]])
			b.WriteString(unmatched(text[m[0]:m[1]]))
			last = m[1]
			continue
		}
		depth--
		if depth == 0 {
			b.WriteString(fn(scoop{
				Attrs: attrs,
				Open:  text[openStart:openEnd],
				Inner: text[openEnd:m[0]],
				Close: text[m[0]:m[1]],
			}))
			last = m[1]
		}
	}
	if depth > 0 {
		b.WriteString(fn(scoop{
			Attrs: attrs,
			Open:  text[openStart:openEnd],
			Inner: text[openEnd:],
		}))
		return b.String()
	}
	b.WriteString(text[last:])
	return b.String()
}
