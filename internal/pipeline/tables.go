package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

type cellKind int

const (
	cellData cellKind = iota
	cellHeader
	cellRowspan
)

type cell struct {
	kind    cellKind
	text    string
	align   string
	colspan int
	rowspan int
}

// tableAccumulator collects pipe rows until the table ends. origins holds,
// per column, the last cell a caret in that column extends.
type tableAccumulator struct {
	rows    [][]*cell
	origins []*cell
}

var headerCellPattern = regexp.MustCompile(`^\*(.+)\*$`)

func newTableAccumulator() *tableAccumulator {
	return &tableAccumulator{}
}

func (t *tableAccumulator) addRow(line string) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line[1:len(line)-1], "|")

	var row []*cell
	col := 0
	for _, part := range parts {
		if part == "" && len(row) > 0 {
			row[len(row)-1].colspan++
			col++
			continue
		}
		c := parseCell(part)
		if c.kind == cellRowspan {
			if col < len(t.origins) && t.origins[col] != nil {
				t.origins[col].rowspan++
				row = append(row, c)
				col++
				continue
			}
			c.kind = cellData
		}
		row = append(row, c)
		for len(t.origins) <= col {
			t.origins = append(t.origins, nil)
		}
		t.origins[col] = c
		col++
	}
	t.rows = append(t.rows, row)
}

func parseCell(part string) *cell {
	trimmed := strings.TrimSpace(part)
	c := &cell{kind: cellData, text: trimmed, colspan: 1, rowspan: 1}
	if strings.Trim(trimmed, "*") == "^" {
		c.kind = cellRowspan
		return c
	}
	if m := headerCellPattern.FindStringSubmatch(trimmed); m != nil {
		c.kind = cellHeader
		c.text = strings.TrimSpace(m[1])
	}
	if trimmed != "" {
		left := len(part) - len(strings.TrimLeft(part, " "))
		right := len(part) - len(strings.TrimRight(part, " "))
		c.align = alignment(left, right)
	}
	return c
}

// alignment infers cell alignment from its padding. One leading space
// with less than two trailing spaces reads as unaligned.
func alignment(left, right int) string {
	switch {
	case left == 1 && right < 2:
		return ""
	case left > 1 && left == right:
		return "center"
	case left == right:
		return ""
	case left > right:
		return "right"
	}
	return "left"
}

// render emits the table with the leading run of all-header rows in thead
// and the remaining rows in tbody.
func (t *tableAccumulator) render() string {
	head := 0
	for head < len(t.rows) && isHeaderRow(t.rows[head]) {
		head++
	}

	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="0" cellspacing="1">`)
	if head > 0 {
		b.WriteString("\n<thead>")
		for _, row := range t.rows[:head] {
			writeRow(&b, row)
		}
		b.WriteString("\n</thead>")
	}
	if head < len(t.rows) {
		b.WriteString("\n<tbody>")
		for _, row := range t.rows[head:] {
			writeRow(&b, row)
		}
		b.WriteString("\n</tbody>")
	}
	b.WriteString("\n</table>")
	return b.String()
}

func isHeaderRow(row []*cell) bool {
	seen := false
	for _, c := range row {
		switch c.kind {
		case cellHeader:
			seen = true
		case cellData:
			return false
		}
	}
	return seen
}

func writeRow(b *strings.Builder, row []*cell) {
	b.WriteString("\n<tr>")
	for _, c := range row {
		if c.kind == cellRowspan {
			continue
		}
		tag := "td"
		if c.kind == cellHeader {
			tag = "th"
		}
		b.WriteString("<" + tag)
		if c.colspan > 1 {
			b.WriteString(` colspan="` + strconv.Itoa(c.colspan) + `"`)
		}
		if c.rowspan > 1 {
			b.WriteString(` rowspan="` + strconv.Itoa(c.rowspan) + `"`)
		}
		if c.align != "" {
			b.WriteString(` style="text-align:` + c.align + `"`)
		}
		b.WriteString(">")
		b.WriteString(c.text)
		b.WriteString("</" + tag + ">")
	}
	b.WriteString("</tr>")
}
