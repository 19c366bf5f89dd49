package pipeline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Kind identifies how a protected fragment is serialized on restoration.
type Kind int

const (
	KindLiteral Kind = iota
	KindVerbatim
	KindSticky
	KindLink
	KindProtected
	KindRaw
)

var kindNames = [...]string{
	KindLiteral:   "literal",
	KindVerbatim:  "verbatim",
	KindSticky:    "sticky",
	KindLink:      "link",
	KindProtected: "protected",
	KindRaw:       "raw",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// escapes reports whether fragment text of this kind is verbatim-escaped.
func (k Kind) escapes() bool {
	switch k {
	case KindLiteral, KindVerbatim, KindSticky, KindProtected:
		return true
	}
	return false
}

// defaultClass is the class attribute the inverse converter keys on.
func (k Kind) defaultClass() string {
	switch k {
	case KindLiteral:
		return "WYSIWYG_LITERAL"
	case KindVerbatim:
		return "TMLverbatim"
	case KindSticky:
		return "WYSIWYG_STICKY"
	case KindLink:
		return "WYSIWYG_LINK"
	case KindProtected:
		return "WYSIWYG_PROTECTED"
	}
	return ""
}

// Element is the closed set of wrapper elements a fragment can render with.
type Element int

const (
	ElementNone Element = iota
	ElementSpan
	ElementDiv
	ElementPre
	ElementAnchor
)

var elementNames = [...]string{
	ElementNone:   "",
	ElementSpan:   "span",
	ElementDiv:    "div",
	ElementPre:    "pre",
	ElementAnchor: "a",
}

func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return ""
	}
	return elementNames[e]
}

// block reports whether the element must not be nested in a paragraph.
func (e Element) block() bool {
	return e == ElementDiv || e == ElementPre
}

// Fragment is a span of text lifted out of the stream during a run.
type Fragment struct {
	Kind    Kind
	Wrapper Element
	// Class replaces the kind's default class when set.
	Class string
	Attrs map[string]string
	// Text is the body to render. For escaping kinds it is raw markup.
	Text string
	// Source is the original markup the fragment replaced.
	Source string
}

func (f *Fragment) render() string {
	body := f.Text
	switch {
	case f.Kind.escapes():
		body = EscapeVerbatim(body)
	case f.Kind == KindLink:
		body = html.EscapeString(body)
	}
	if f.Wrapper == ElementNone {
		return body
	}

	name := f.Wrapper.String()
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(name)
	if class := f.Class; class != "" {
		writeAttr(&b, "class", class)
	} else if class := f.Kind.defaultClass(); class != "" {
		writeAttr(&b, "class", class)
	}
	keys := make([]string, 0, len(f.Attrs))
	for k := range f.Attrs {
		if k != "class" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttr(&b, k, f.Attrs[k])
	}
	b.WriteString(">")
	b.WriteString(body)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
	return b.String()
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}

var tokenPattern = regexp.MustCompile(`\x01([0-9]+)\x01`)

func token(id int) string {
	return tokenChar + strconv.Itoa(id) + tokenChar
}

// Arena holds the fragments of one conversion run, indexed by dense id.
// It is not safe for concurrent use.
type Arena struct {
	frags []Fragment
	used  []bool
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of fragments protected so far.
func (a *Arena) Len() int {
	return len(a.frags)
}

// Protect stores f and returns the placeholder token standing for it.
// Tokens nested in Source are always expanded back to markup. Tokens
// nested in Text are expanded too, except for raw passthrough fragments
// whose nested tokens are left for the resolver.
func (a *Arena) Protect(f Fragment) string {
	if f.Source == "" {
		f.Source = f.Text
	}
	f.Source = a.Unprotect(f.Source)
	if f.Kind != KindRaw {
		f.Text = a.Unprotect(f.Text)
	}
	id := len(a.frags)
	a.frags = append(a.frags, f)
	a.used = append(a.used, false)
	return token(id)
}

// Unprotect replaces every known token in text with the source markup of
// its fragment. Unknown tokens are left in place.
func (a *Arena) Unprotect(text string) string {
	if !strings.Contains(text, tokenChar) {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if f, ok := a.lookup(tok); ok {
			return f.Source
		}
		return tok
	})
}

// ResolveAll replaces tokens with rendered fragments until none are left
// or no more progress is possible. Each fragment is rendered at most once;
// a token that is unknown or seen a second time stays in the text so the
// caller can detect the failure.
func (a *Arena) ResolveAll(text string) string {
	for pass := 0; pass <= len(a.frags); pass++ {
		if !strings.Contains(text, tokenChar) {
			break
		}
		progressed := false
		text = tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
			id, err := strconv.Atoi(tok[1 : len(tok)-1])
			if err != nil || id >= len(a.frags) || a.used[id] {
				return tok
			}
			a.used[id] = true
			progressed = true
			return a.frags[id].render()
		})
		if !progressed {
			break
		}
	}
	return text
}

func (a *Arena) lookup(tok string) (*Fragment, bool) {
	id, err := strconv.Atoi(tok[1 : len(tok)-1])
	if err != nil || id >= len(a.frags) {
		return nil, false
	}
	return &a.frags[id], true
}

// tokenFragment returns the fragment if s is exactly one token.
func (a *Arena) tokenFragment(s string) (*Fragment, bool) {
	loc := tokenPattern.FindStringIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return nil, false
	}
	return a.lookup(s)
}

// isMacroLine reports whether line is a single protected macro invocation.
func (a *Arena) isMacroLine(line string) bool {
	f, ok := a.tokenFragment(strings.TrimSpace(line))
	return ok && f.Kind == KindProtected && strings.HasPrefix(f.Source, "%")
}

// isBlockLine reports whether line holds nothing but tokens of fragments
// rendered with block wrappers.
func (a *Arena) isBlockLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	rest := tokenPattern.ReplaceAllStringFunc(trimmed, func(tok string) string {
		if f, ok := a.lookup(tok); ok && f.Wrapper.block() {
			return ""
		}
		return tok
	})
	return strings.TrimSpace(rest) == ""
}
