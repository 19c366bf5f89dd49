package pipeline

import (
	"strings"
	"testing"
)

func TestArena_ProtectAndResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		frag     Fragment
		expected string
	}{
		{
			name:     "verbatim is escaped inside pre",
			frag:     Fragment{Kind: KindVerbatim, Wrapper: ElementPre, Text: "a <b>\nc"},
			expected: `<pre class="TMLverbatim">a&nbsp;&#60;b&#62;<br />c</pre>`,
		},
		{
			name:     "literal uses div",
			frag:     Fragment{Kind: KindLiteral, Wrapper: ElementDiv, Text: "x"},
			expected: `<div class="WYSIWYG_LITERAL">x</div>`,
		},
		{
			name:     "sticky uses div",
			frag:     Fragment{Kind: KindSticky, Wrapper: ElementDiv, Text: "x"},
			expected: `<div class="WYSIWYG_STICKY">x</div>`,
		},
		{
			name:     "protected span",
			frag:     Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: "%TOC%"},
			expected: `<span class="WYSIWYG_PROTECTED">%TOC%</span>`,
		},
		{
			name:     "raw passthrough emitted as-is",
			frag:     Fragment{Kind: KindRaw, Text: `<b class="x">`},
			expected: `<b class="x">`,
		},
		{
			name: "link escapes label and sorts attributes",
			frag: Fragment{
				Kind:    KindLink,
				Wrapper: ElementAnchor,
				Attrs:   map[string]string{"href": "/a?b=1&c=2", "data-wikilink": "[[A][x<y]]"},
				Text:    "x<y",
			},
			expected: `<a class="WYSIWYG_LINK" data-wikilink="[[A][x&lt;y]]" href="/a?b=1&amp;c=2">x&lt;y</a>`,
		},
		{
			name:     "custom class replaces default",
			frag:     Fragment{Kind: KindVerbatim, Wrapper: ElementPre, Class: "TMLpre", Text: "x"},
			expected: `<pre class="TMLpre">x</pre>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := NewArena()
			tok := a.Protect(tt.frag)
			got := a.ResolveAll("[" + tok + "]")
			want := "[" + tt.expected + "]"
			if got != want {
				t.Errorf("ResolveAll() = %q, want %q", got, want)
			}
		})
	}
}

func TestArena_NestedProtection(t *testing.T) {
	t.Parallel()

	t.Run("escaping kind expands nested tokens to source", func(t *testing.T) {
		t.Parallel()
		a := NewArena()
		inner := a.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: "%X%"})
		outer := a.Protect(Fragment{Kind: KindLiteral, Wrapper: ElementDiv, Text: "a " + inner})
		got := a.ResolveAll(outer)
		want := `<div class="WYSIWYG_LITERAL">a&nbsp;%X%</div>`
		if got != want {
			t.Errorf("ResolveAll() = %q, want %q", got, want)
		}
	})

	t.Run("raw passthrough resolves nested tokens", func(t *testing.T) {
		t.Parallel()
		a := NewArena()
		inner := a.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: "%X%"})
		outer := a.Protect(Fragment{Kind: KindRaw, Text: "<b>" + inner + "</b>"})
		got := a.ResolveAll(outer)
		want := `<b><span class="WYSIWYG_PROTECTED">%X%</span></b>`
		if got != want {
			t.Errorf("ResolveAll() = %q, want %q", got, want)
		}
	})

	t.Run("source is fully unprotected", func(t *testing.T) {
		t.Parallel()
		a := NewArena()
		inner := a.Protect(Fragment{Kind: KindRaw, Text: "&lt;", Source: "<"})
		outer := a.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: "a" + inner})
		if got := a.Unprotect(outer); got != "a<" {
			t.Errorf("Unprotect() = %q, want %q", got, "a<")
		}
	})
}

func TestArena_ResolveAll_LeavesBadTokens(t *testing.T) {
	t.Parallel()

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		a := NewArena()
		got := a.ResolveAll("x" + token(7) + "y")
		if !hasSentinel(got) {
			t.Errorf("ResolveAll() = %q, want the unknown token kept", got)
		}
	})

	t.Run("token used twice", func(t *testing.T) {
		t.Parallel()
		a := NewArena()
		tok := a.Protect(Fragment{Kind: KindRaw, Text: "r"})
		got := a.ResolveAll(tok + tok)
		if !strings.HasPrefix(got, "r") || !hasSentinel(got) {
			t.Errorf("ResolveAll() = %q, want first use resolved and second kept", got)
		}
	})

	t.Run("self reference terminates", func(t *testing.T) {
		t.Parallel()
		a := NewArena()
		a.frags = append(a.frags, Fragment{Kind: KindRaw, Text: token(0)})
		a.used = append(a.used, false)
		got := a.ResolveAll(token(0))
		if !hasSentinel(got) {
			t.Errorf("ResolveAll() = %q, want leftover token", got)
		}
	})
}

func TestArena_LineClassifiers(t *testing.T) {
	t.Parallel()

	a := NewArena()
	macro := a.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: "%TABLE%"})
	tag := a.Protect(Fragment{Kind: KindProtected, Wrapper: ElementSpan, Text: "<nop>"})
	verb := a.Protect(Fragment{Kind: KindVerbatim, Wrapper: ElementPre, Text: "x"})

	tests := []struct {
		name  string
		line  string
		macro bool
		block bool
	}{
		{name: "macro alone", line: macro, macro: true},
		{name: "macro with spaces", line: "  " + macro + " ", macro: true},
		{name: "non-macro protected", line: tag},
		{name: "macro with text", line: macro + " text"},
		{name: "block token", line: verb, block: true},
		{name: "two block tokens", line: verb + " " + verb, block: true},
		{name: "block with text", line: verb + "x"},
		{name: "empty", line: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := a.isMacroLine(tt.line); got != tt.macro {
				t.Errorf("isMacroLine(%q) = %v, want %v", tt.line, got, tt.macro)
			}
			if got := a.isBlockLine(tt.line); got != tt.block {
				t.Errorf("isBlockLine(%q) = %v, want %v", tt.line, got, tt.block)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	if got := KindVerbatim.String(); got != "verbatim" {
		t.Errorf("KindVerbatim.String() = %q, want %q", got, "verbatim")
	}
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q, want %q", got, "Kind(42)")
	}
}
