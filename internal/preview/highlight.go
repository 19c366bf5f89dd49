package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const verbatimClass = "TMLverbatim"

// highlighter colours verbatim blocks with chroma, using CSS classes so
// one stylesheet serves every block in the document.
type highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newHighlighter(styleName string) *highlighter {
	return &highlighter{
		style: styles.Get(styleName),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// css returns the stylesheet for the highlighter's style.
func (h *highlighter) css() (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return buf.String(), nil
}

// blockLexer returns the lexer named by a verbatim block's extra class,
// or nil when n is not such a block.
func blockLexer(n *html.Node) chroma.Lexer {
	if n.Type != html.ElementNode || n.DataAtom != atom.Pre {
		return nil
	}
	classes := strings.Fields(attr(n, "class"))
	if len(classes) < 2 || classes[0] != verbatimClass {
		return nil
	}
	for _, name := range classes[1:] {
		if lexer := lexers.Get(name); lexer != nil {
			return chroma.Coalesce(lexer)
		}
	}
	return nil
}

// highlight replaces the children of pre with highlighted markup.
// Converter output encodes verbatim line breaks as <br> and spaces as
// no-break spaces; both are turned back into plain text first.
func (h *highlighter) highlight(pre *html.Node, lexer chroma.Lexer) error {
	code := strings.ReplaceAll(blockText(pre), "\u00a0", " ")

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenising %s block: %w", lexer.Config().Name, err)
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return fmt.Errorf("formatting %s block: %w", lexer.Config().Name, err)
	}
	nodes, err := html.ParseFragment(&buf, pre)
	if err != nil {
		return fmt.Errorf("parsing highlighted block: %w", err)
	}

	for c := pre.FirstChild; c != nil; c = pre.FirstChild {
		pre.RemoveChild(c)
	}
	for _, n := range nodes {
		pre.AppendChild(n)
	}
	setAttr(pre, "class", attr(pre, "class")+" chroma")
	return nil
}

func blockText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case c.Type == html.ElementNode && c.DataAtom == atom.Br:
				b.WriteByte('\n')
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
