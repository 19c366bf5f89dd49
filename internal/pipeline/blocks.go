package pipeline

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Opaque block tags, extracted in this order so that an outer verbatim
// hides everything inside it.
var (
	verbatimScanner = newTagScanner("verbatim")
	literalScanner  = newTagScanner("literal")
	stickyScanner   = newTagScanner("sticky")
	preScanner      = newTagScanner("pre")
)

// TagHandler decides how an extension tag occurrence is lifted out.
// Returning true protects the whole occurrence as one opaque fragment;
// false protects only the opening and closing tags so the content stays
// editable.
type TagHandler func(markup string) bool

func (r *run) extractBlocks(text string) string {
	text = verbatimScanner.Scoop(text, func(s scoop) string {
		attrs := parseAttrs(s.Attrs)
		class := KindVerbatim.defaultClass()
		if extra := strings.TrimSpace(attrs["class"]); extra != "" {
			class += " " + extra
		}
		return r.arena.Protect(Fragment{
			Kind:    KindVerbatim,
			Wrapper: ElementPre,
			Class:   class,
			Attrs:   attrs,
			Text:    s.Inner,
			Source:  s.whole(),
		})
	}, r.escapeDelimiter)
	text = literalScanner.Scoop(text, r.blockProtector(KindLiteral, ElementDiv, ""), r.escapeDelimiter)
	text = stickyScanner.Scoop(text, r.blockProtector(KindSticky, ElementDiv, ""), r.escapeDelimiter)
	text = preScanner.Scoop(text, r.blockProtector(KindVerbatim, ElementPre, "TMLpre"), r.escapeDelimiter)
	return r.extractTags(text)
}

// escapeDelimiter renders an unpaired closing tag escaped, while any
// fragment that later swallows it gets the tag back verbatim.
func (r *run) escapeDelimiter(d string) string {
	return r.arena.Protect(Fragment{Kind: KindRaw, Text: html.EscapeString(d), Source: d})
}

func (r *run) blockProtector(kind Kind, wrapper Element, class string) func(scoop) string {
	return func(s scoop) string {
		return r.arena.Protect(Fragment{
			Kind:    kind,
			Wrapper: wrapper,
			Class:   class,
			Attrs:   parseAttrs(s.Attrs),
			Text:    s.Inner,
			Source:  s.whole(),
		})
	}
}

// extractTags runs the registered extension tag handlers, in name order
// so that output does not depend on map iteration.
func (r *run) extractTags(text string) string {
	if len(r.opts.XMLTagHandlers) == 0 {
		return text
	}
	names := make([]string, 0, len(r.opts.XMLTagHandlers))
	for name := range r.opts.XMLTagHandlers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		handler := r.opts.XMLTagHandlers[name]
		text = newTagScanner(name).Scoop(text, func(s scoop) string {
			whole := s.whole()
			if handler(r.arena.Unprotect(whole)) {
				wrapper := ElementSpan
				if strings.Contains(whole, "\n") {
					wrapper = ElementDiv
				}
				return r.arena.Protect(Fragment{Kind: KindProtected, Wrapper: wrapper, Text: whole})
			}
			out := r.arena.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: s.Open}) + s.Inner
			if s.Close != "" {
				out += r.arena.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: s.Close})
			}
			return out
		}, r.escapeDelimiter)
	}
	return text
}
