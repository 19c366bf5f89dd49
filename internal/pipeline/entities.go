package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	entityPattern = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)

	uriPattern = regexp.MustCompile(`(?:https?|ftp|file|mailto|news|nntp|telnet):[^\s<>"\[\]|\x00-\x02]*[^\s<>"\[\]|\x00-\x02*_=.,!?;:)']`)
)

// protectEntities shields character references and bare URIs, then turns
// the remaining angle brackets and ampersands into references. Each
// becomes a fragment so link labels can recover the original characters.
func (r *run) protectEntities(text string) string {
	text = entityPattern.ReplaceAllStringFunc(text, func(ref string) string {
		return r.arena.Protect(Fragment{Kind: KindRaw, Text: ref})
	})
	text = uriPattern.ReplaceAllStringFunc(text, func(uri string) string {
		return r.arena.Protect(Fragment{
			Kind:    KindLink,
			Wrapper: ElementAnchor,
			Attrs:   map[string]string{"href": uri, "data-wikilink": uri},
			Text:    uri,
			Source:  uri,
		})
	})
	if !strings.ContainsAny(text, "<>&") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, c := range []byte(text) {
		switch c {
		case '<', '>', '&':
			s := string(c)
			b.WriteString(r.arena.Protect(Fragment{Kind: KindRaw, Text: html.EscapeString(s), Source: s}))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
