package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	containerOpen  = markerChar + "div"
	containerClose = markerChar + "/div"

	containerTag = `<div class="foswikiTableAndMacros">`
	caretPara    = `<p class="foswikiDeleteMe">` + nbspChar + `</p>`
)

var (
	tableRowPattern = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	headingPattern  = regexp.MustCompile(`^---+(\+{1,6})((?:!!|#)*)\s*(.*)$`)
	rulePattern     = regexp.MustCompile(`^---+\s*$`)
	blankPattern    = regexp.MustCompile(`^\s*$`)
	indentedPattern = regexp.MustCompile(`^[ \t]+\S`)
)

// linePatterns are the indentation-sensitive patterns, compiled once per
// engine for its tab width.
type linePatterns struct {
	width        int
	indent       *regexp.Regexp
	bullet       *regexp.Regexp
	ordered      *regexp.Regexp
	dollarTerm   *regexp.Regexp
	wordTerm     *regexp.Regexp
	listItem     *regexp.Regexp
	directive    *regexp.Regexp
	continuation *regexp.Regexp
}

func compileLinePatterns(width int) *linePatterns {
	ind := fmt.Sprintf(`(?:\t| {%d})+`, width)
	return &linePatterns{
		width:        width,
		indent:       regexp.MustCompile(`^` + ind),
		bullet:       regexp.MustCompile(`^(` + ind + `)\*(?:\s(.*))?$`),
		ordered:      regexp.MustCompile(`^(` + ind + `)([0-9]+|[a-zA-Z]|[ivxlcdmIVXLCDM]+)\.(?:\s(.*))?$`),
		dollarTerm:   regexp.MustCompile(`^(` + ind + `)\$\s+(.+?):(?:\s(.*))?$`),
		wordTerm:     regexp.MustCompile(`^(` + ind + `)([^\s:*$]+):\s(.*)$`),
		listItem:     regexp.MustCompile(`^` + ind + `(?:\*|\$|[0-9]+\.|[a-zA-Z]\.|[ivxlcdmIVXLCDM]+\.)(?:\s|$)`),
		directive:    regexp.MustCompile(`^` + ind + `\*\s+(?:Set|Local)\s+\w+\s*=`),
		continuation: indentedPattern,
	}
}

// depth measures an indent run in levels, counting a tab as one level.
func (p *linePatterns) depth(indent string) int {
	spaces := strings.Count(indent, " ")
	return strings.Count(indent, "\t") + spaces/p.width
}

// lineParser is the structural state machine. One value serves one run.
type lineParser struct {
	r           *run
	out         []string
	inParagraph bool
	inContainer bool
	lists       listStack
	table       *tableAccumulator
}

func (r *run) parseLines(text string) string {
	lp := &lineParser{r: r}
	lines := r.markContainers(strings.Split(text, "\n"))
	for _, line := range lines {
		lp.line(line)
	}
	lp.finish()
	return lp.result()
}

func (lp *lineParser) line(line string) {
	p := lp.r.engine.patterns

	if tableRowPattern.MatchString(line) {
		lp.closeParagraph()
		lp.closeLists()
		if lp.table == nil {
			lp.table = newTableAccumulator()
		}
		lp.table.addRow(line)
		return
	}
	lp.flushTable()

	switch line {
	case containerOpen:
		lp.closeParagraph()
		lp.closeLists()
		lp.emit(containerTag)
		lp.inContainer = true
		return
	case containerClose:
		lp.closeParagraph()
		lp.closeLists()
		lp.emit("</div>")
		lp.inContainer = false
		return
	}

	if m := headingPattern.FindStringSubmatch(line); m != nil {
		lp.closeParagraph()
		lp.closeLists()
		lp.emit(heading(len(m[1]), m[2], m[3]))
		return
	}

	if blankPattern.MatchString(line) {
		lp.closeParagraph()
		lp.closeLists()
		lp.emit("<p>")
		lp.inParagraph = true
		return
	}

	if m := p.dollarTerm.FindStringSubmatch(line); m != nil {
		lp.definition(m[1], m[2], m[3])
		return
	}
	if m := p.wordTerm.FindStringSubmatch(line); m != nil {
		lp.definition(m[1], m[2], m[3])
		return
	}

	if m := p.bullet.FindStringSubmatch(line); m != nil {
		lp.closeParagraph()
		lp.addListItem(listLevel{list: "ul", item: "li"}, p.depth(m[1]))
		lp.emit("<li>" + itemText(m[2]))
		return
	}

	if m := p.ordered.FindStringSubmatch(line); m != nil {
		lp.closeParagraph()
		lp.addListItem(listLevel{list: "ol", item: "li", typ: orderedType(m[2])}, p.depth(m[1]))
		lp.emit("<li>" + itemText(m[3]))
		return
	}

	if len(lp.lists) > 0 && indentedPattern.MatchString(line) {
		lp.emit(line)
		return
	}

	if rulePattern.MatchString(line) {
		lp.closeParagraph()
		lp.emit("<hr />")
		return
	}

	if lp.r.arena.isBlockLine(line) {
		lp.closeParagraph()
		lp.closeLists()
		lp.emit(line)
		return
	}

	lp.closeLists()
	if !lp.inParagraph && !lp.inContainer {
		lp.emit("<p>")
		lp.inParagraph = true
	}
	lp.emit(line)
}

func (lp *lineParser) definition(indent, term, def string) {
	lp.closeParagraph()
	lp.addListItem(listLevel{list: "dl", item: "dd"}, lp.r.engine.patterns.depth(indent))
	lp.emit("<dt>" + strings.TrimSpace(term) + "</dt><dd>" + itemText(def))
}

func (lp *lineParser) emit(s string) {
	lp.out = append(lp.out, s)
}

func (lp *lineParser) closeParagraph() {
	if lp.inParagraph {
		lp.emit("</p>")
		lp.inParagraph = false
	}
}

func (lp *lineParser) flushTable() {
	if lp.table == nil {
		return
	}
	lp.emit(lp.table.render())
	lp.table = nil
}

func (lp *lineParser) finish() {
	lp.flushTable()
	lp.closeParagraph()
	lp.closeLists()
	if lp.inContainer {
		lp.emit("</div>")
		lp.inContainer = false
	}
}

// result joins the emitted lines, trims empty paragraphs from both ends
// and gives a leading table a paragraph to put the caret in.
func (lp *lineParser) result() string {
	out := lp.out
	for len(out) >= 2 && out[0] == "<p>" && out[1] == "</p>" {
		out = out[2:]
	}
	for n := len(out); n >= 2 && out[n-2] == "<p>" && out[n-1] == "</p>"; n = len(out) {
		out = out[:n-2]
	}
	if len(out) > 0 && (strings.HasPrefix(out[0], "<table") || out[0] == containerTag) {
		out = append([]string{caretPara}, out...)
	}
	return strings.Join(out, "\n")
}

// markContainers wraps each run of adjacent table rows and macro lines
// that holds at least one of each in container marker lines.
func (r *run) markContainers(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		j, rows, macros := i, 0, 0
		for ; j < len(lines); j++ {
			if tableRowPattern.MatchString(lines[j]) {
				rows++
			} else if r.arena.isMacroLine(lines[j]) {
				macros++
			} else {
				break
			}
		}
		if j == i {
			out = append(out, lines[i])
			i++
			continue
		}
		if rows > 0 && macros > 0 {
			out = append(out, containerOpen)
			out = append(out, lines[i:j]...)
			out = append(out, containerClose)
		} else {
			out = append(out, lines[i:j]...)
		}
		i = j
	}
	return out
}

func heading(level int, flags, text string) string {
	var classes []string
	if strings.Contains(flags, "!!") {
		classes = append(classes, "notoc")
	}
	if strings.Contains(flags, "#") {
		classes = append(classes, "numbered")
	}
	tag := "h" + strconv.Itoa(level)
	open := "<" + tag
	if len(classes) > 0 {
		open += ` class="` + strings.Join(classes, " ") + `"`
	}
	return open + ">" + strings.TrimSpace(text) + "</" + tag + ">"
}

// itemText gives an empty list item content the editor can hold a caret in.
func itemText(s string) string {
	if strings.TrimSpace(s) == "" {
		return nbspChar
	}
	return s
}

// orderedType maps a list marker to the ol type attribute.
func orderedType(marker string) string {
	switch {
	case marker[0] >= '0' && marker[0] <= '9':
		return "1"
	case marker == "i" || marker == "I":
		return marker
	case len(marker) > 1:
		if marker[0] >= 'a' {
			return "i"
		}
		return "I"
	case marker[0] >= 'a':
		return "a"
	}
	return "A"
}
