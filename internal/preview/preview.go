package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/modell-aachen/WysiwygPlugin/internal/assets"
	"github.com/modell-aachen/WysiwygPlugin/internal/fileutil"
)

// Sentinel errors for preview rendering.
var (
	ErrTemplateParse = errors.New("preview template parsing failed")
	ErrRender        = errors.New("preview rendering failed")
)

// Options configures a Renderer.
type Options struct {
	// Style is a style name, a CSS file path or inline CSS.
	Style          string
	Template       string // template name, default assets.PreviewTemplateName
	Highlight      bool
	HighlightStyle string
}

// Document is one converted topic to wrap.
type Document struct {
	Title string
	Body  string // converter output
	// AttachDir resolves relative image paths. Empty leaves them as is.
	AttachDir string
}

// Renderer builds preview documents. It is immutable after construction
// and safe for concurrent use.
type Renderer struct {
	tmpl        *template.Template
	css         string
	highlighter *highlighter
}

// NewRenderer loads the stylesheet and template through loader.
func NewRenderer(loader assets.Loader, opts Options) (*Renderer, error) {
	css, err := resolveStyle(loader, opts.Style)
	if err != nil {
		return nil, err
	}

	name := opts.Template
	if name == "" {
		name = assets.PreviewTemplateName
	}
	content, err := loader.LoadTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("loading preview template %q: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	r := &Renderer{tmpl: tmpl, css: css}
	if opts.Highlight {
		r.highlighter = newHighlighter(opts.HighlightStyle)
		hlCSS, err := r.highlighter.css()
		if err != nil {
			return nil, err
		}
		r.css += "\n" + hlCSS
	}
	return r, nil
}

// resolveStyle turns a style name, path or inline CSS into CSS content.
func resolveStyle(loader assets.Loader, style string) (string, error) {
	switch {
	case style == "":
		style = assets.DefaultStyleName
	case fileutil.IsFilePath(style):
		content, err := os.ReadFile(style) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", style, err)
		}
		return string(content), nil
	case fileutil.IsCSS(style):
		return style, nil
	}
	css, err := loader.LoadStyle(style)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", style, err)
	}
	return css, nil
}

// Render wraps doc.Body in the preview template.
func (r *Renderer) Render(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := r.transform(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	var buf bytes.Buffer
	data := struct {
		Title string
		Body  template.HTML
	}{
		Title: doc.Title,
		Body:  template.HTML(body), // #nosec G203 -- converter output, already escaped
	}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return InjectCSS(ctx, buf.String(), r.css), nil
}

// transform parses the body, highlights verbatim blocks and rewrites image
// paths, then renders it back.
func (r *Renderer) transform(doc Document) (string, error) {
	if r.highlighter == nil && doc.AttachDir == "" {
		return doc.Body, nil
	}

	var attachDir string
	if doc.AttachDir != "" {
		abs, err := filepath.Abs(doc.AttachDir)
		if err != nil {
			return "", err
		}
		attachDir = abs
	}

	bodyContext := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(doc.Body), bodyContext)
	if err != nil {
		return "", err
	}

	var blocks []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if attachDir != "" && isImage(n) {
			rewriteImage(n, attachDir)
		}
		if r.highlighter != nil && blockLexer(n) != nil {
			blocks = append(blocks, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	for _, pre := range blocks {
		if err := r.highlighter.highlight(pre, blockLexer(pre)); err != nil {
			return "", err
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
