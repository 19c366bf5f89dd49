package pipeline

import (
	"regexp"
	"strings"
)

// colours maps the standard colour macros to the value they render.
var colours = map[string]string{
	"BLACK":  "#000000",
	"BLUE":   "#0000FF",
	"BROWN":  "#996633",
	"GRAY":   "#808080",
	"GREEN":  "#008000",
	"LIME":   "#00FF00",
	"MAROON": "#800000",
	"NAVY":   "#000080",
	"OLIVE":  "#808000",
	"ORANGE": "#FF6600",
	"PINK":   "#FF6666",
	"PURPLE": "#800080",
	"RED":    "#FF0000",
	"SILVER": "#C0C0C0",
	"TEAL":   "#008080",
	"WHITE":  "#FFFFFF",
	"YELLOW": "#FFFF00",
}

var (
	colourPattern = regexp.MustCompile(`%(BLACK|BLUE|BROWN|GRAY|GREEN|LIME|MAROON|NAVY|OLIVE|ORANGE|PINK|PURPLE|RED|SILVER|TEAL|WHITE|YELLOW|ENDCOLOR)%`)

	macroSplit    = regexp.MustCompile(`\n?%`)
	macroComplete = regexp.MustCompile(`(?s)^(\n?)%([a-zA-Z][a-zA-Z0-9_:]*(?:\{.*\})?)$`)
	macroWithArgs = regexp.MustCompile(`(?s)^\n?%[a-zA-Z][a-zA-Z0-9_:]*\{.*\}$`)
	macroOpenArgs = regexp.MustCompile(`^\n?%[a-zA-Z][a-zA-Z0-9_:]*\{`)
)

// convertColours turns %RED%text%ENDCOLOR% pairs on one line into editable
// colour spans. Unpaired colour macros are left for protectMacros.
func (r *run) convertColours(text string) string {
	if !strings.Contains(text, "COLOR%") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = r.convertLineColours(line)
	}
	return strings.Join(lines, "\n")
}

func (r *run) convertLineColours(line string) string {
	locs := colourPattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) < 2 {
		return line
	}
	replace := make(map[int]string, len(locs))
	var open []int
	for i, m := range locs {
		name := line[m[2]:m[3]]
		if name != "ENDCOLOR" {
			open = append(open, i)
			continue
		}
		if len(open) == 0 {
			continue
		}
		start := open[len(open)-1]
		open = open[:len(open)-1]
		om := locs[start]
		replace[start] = r.arena.Protect(Fragment{
			Kind:   KindRaw,
			Text:   `<span class="WYSIWYG_COLOR" style="color:` + colours[line[om[2]:om[3]]] + `">`,
			Source: line[om[0]:om[1]],
		})
		replace[i] = r.arena.Protect(Fragment{
			Kind:   KindRaw,
			Text:   "</span>",
			Source: line[m[0]:m[1]],
		})
	}
	if len(replace) == 0 {
		return line
	}

	var b strings.Builder
	last := 0
	for i, m := range locs {
		tok, ok := replace[i]
		if !ok {
			continue
		}
		b.WriteString(line[last:m[0]])
		b.WriteString(tok)
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

// protectMacros lifts out every complete %NAME% or %NAME{...}% invocation,
// nested invocations included, as one protected fragment.
//
// The text is split on "%" (optionally preceded by a newline) and fed
// through a pushdown automaton. A "%" closes the context on top of the
// stack when that context reads as a complete invocation; otherwise it
// opens a new context. A "%" following "}" first merges contexts down
// the stack until an invocation with parameters is found. While the top
// context is inside a double-quoted parameter value, "%" is plain text.
// Contexts still open at end of input are concatenated back unchanged.
func (r *run) protectMacros(text string) string {
	if !strings.Contains(text, "%") {
		return text
	}
	queue := splitKeep(text, macroSplit)
	var stack []string
	top := ""
	quoted := false
	for _, tok := range queue {
		if tok != "%" && tok != "\n%" || quoted {
			top += tok
			if strings.Contains(tok, `"`) {
				quoted = inQuotedValue(top)
			}
			continue
		}
		if tok == "%" && strings.HasSuffix(top, "}") {
			for len(stack) > 0 && !macroWithArgs.MatchString(top) {
				top = stack[len(stack)-1] + top
				stack = stack[:len(stack)-1]
			}
		}
		if m := macroComplete.FindStringSubmatch(top); tok == "%" && m != nil {
			prev := ""
			if len(stack) > 0 {
				prev = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
			top = prev + m[1] + r.arena.Protect(Fragment{
				Kind:    KindProtected,
				Wrapper: ElementSpan,
				Text:    "%" + m[2] + "%",
			})
			quoted = inQuotedValue(top)
			continue
		}
		stack = append(stack, top)
		top = tok
		quoted = false
	}
	for len(stack) > 0 {
		top = stack[len(stack)-1] + top
		stack = stack[:len(stack)-1]
	}
	return top
}

// inQuotedValue reports whether ctx is an invocation with an open
// parameter list whose last double quote is still unterminated.
func inQuotedValue(ctx string) bool {
	loc := macroOpenArgs.FindStringIndex(ctx)
	if loc == nil {
		return false
	}
	quotes := 0
	args := ctx[loc[1]:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '\\':
			i++
		case '"':
			quotes++
		}
	}
	return quotes%2 == 1
}

// splitKeep splits text around every match of sep, keeping the matches
// as separate elements.
func splitKeep(text string, sep *regexp.Regexp) []string {
	locs := sep.FindAllStringIndex(text, -1)
	out := make([]string, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			out = append(out, text[last:loc[0]])
		}
		out = append(out, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, text[last:])
	}
	return out
}
