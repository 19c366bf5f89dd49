package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultPalatableTags lists the HTML elements the editor may see as live
// markup.
var DefaultPalatableTags = []string{
	"a", "b", "big", "blockquote", "br", "caption", "cite", "code", "del",
	"dd", "dfn", "dir", "div", "dl", "dt", "em", "font", "h1", "h2", "h3",
	"h4", "h5", "h6", "hr", "i", "img", "ins", "kbd", "li", "menu", "ol", "p",
	"pre", "q", "s", "samp", "small", "span", "strike", "strong", "sub",
	"sup", "table", "tbody", "td", "tfoot", "th", "thead", "tr", "tt", "u",
	"ul", "var",
}

// DefaultProtectedTags are always protected, even if configured palatable.
var DefaultProtectedTags = []string{"script", "style"}

// rawTextTags switch the HTML tokenizer into raw text mode. Their whole
// element, content included, is protected as one fragment.
var rawTextTags = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"textarea":  true,
	"title":     true,
	"xmp":       true,
}

// voidTags never have an end tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// filterHTML protects every literal HTML construct. Palatable tags with
// safe attributes become raw passthrough fragments so later passes leave
// them alone; anything else becomes an opaque protected span.
func (r *run) filterHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	z := html.NewTokenizer(strings.NewReader(text))
	consumed := 0
	rawStart := -1
	rawName := ""
	// open records, per palatable tag name, whether each unclosed start
	// tag was protected. Its end tag shares the outcome.
	open := make(map[string][]bool)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		start := consumed
		consumed += len(raw)

		if rawStart >= 0 {
			if tt == html.EndTagToken {
				name, _ := z.TagName()
				if string(name) == rawName {
					b.WriteString(r.protectSpan(text[rawStart:consumed]))
					rawStart = -1
				}
			}
			continue
		}

		switch tt {
		case html.TextToken:
			b.WriteString(raw)
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tt == html.StartTagToken && rawTextTags[tag] {
				rawStart, rawName = start, tag
				continue
			}
			pass := r.palatable(tag, raw) && safeTagAttrs(z, hasAttr)
			switch {
			case tt == html.StartTagToken && r.engine.palatable[tag] && !voidTags[tag]:
				open[tag] = append(open[tag], !pass)
			case tt == html.EndTagToken:
				if stack := open[tag]; len(stack) > 0 {
					if stack[len(stack)-1] {
						pass = false
					}
					open[tag] = stack[:len(stack)-1]
				}
			}
			if pass {
				b.WriteString(r.arena.Protect(Fragment{Kind: KindRaw, Text: raw}))
				continue
			}
			b.WriteString(r.protectSpan(raw))
		default:
			// Comments, doctypes and processing instructions.
			b.WriteString(r.protectSpan(raw))
		}
	}

	if rawStart >= 0 {
		b.WriteString(r.protectSpan(text[rawStart:]))
		return b.String()
	}
	if consumed < len(text) {
		b.WriteString(text[consumed:])
	}
	return b.String()
}

func (r *run) protectSpan(markup string) string {
	wrapper := ElementSpan
	if strings.Contains(markup, "\n") {
		wrapper = ElementDiv
	}
	return r.arena.Protect(Fragment{Kind: KindProtected, Wrapper: wrapper, Text: markup})
}

// palatable reports whether tag may pass through as live HTML. A tag whose
// markup carries a placeholder never does.
func (r *run) palatable(tag, raw string) bool {
	if strings.Contains(raw, tokenChar) {
		return false
	}
	return r.engine.palatable[tag] && !r.engine.protected[tag]
}

func safeTagAttrs(z *html.Tokenizer, hasAttr bool) bool {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if !safeAttr(string(key), string(val)) {
			return false
		}
	}
	return true
}
