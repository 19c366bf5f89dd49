package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modell-aachen/WysiwygPlugin/internal/assets"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := NewRenderer(assets.NewEmbeddedLoader(), opts)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Options{})
	body := `<h1>Title</h1><p>Some <b>bold</b> text</p>`

	got, err := r.Render(context.Background(), Document{Title: "Main.<WebHome>", Body: body})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Main.&lt;WebHome&gt;</title>",
		"<style>",
		".WYSIWYG_PROTECTED",
		body,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "<style>") > strings.Index(got, "</head>") {
		t.Error("stylesheet should be injected into the head")
	}
}

func TestRenderer_Highlight(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Options{Highlight: true, HighlightStyle: "github"})

	tests := []struct {
		name        string
		body        string
		highlighted bool
	}{
		{
			name:        "verbatim block naming a language",
			body:        `<pre class="TMLverbatim go">package&nbsp;main<br />func&nbsp;main()&nbsp;{}</pre>`,
			highlighted: true,
		},
		{
			name:        "verbatim block without language",
			body:        `<pre class="TMLverbatim">plain&nbsp;text</pre>`,
			highlighted: false,
		},
		{
			name:        "verbatim block with unknown class",
			body:        `<pre class="TMLverbatim nosuchlanguagezz">x</pre>`,
			highlighted: false,
		},
		{
			name:        "pre block is not verbatim",
			body:        `<pre class="TMLpre go">x</pre>`,
			highlighted: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Render(context.Background(), Document{Title: "T", Body: tt.body})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			hasChroma := strings.Contains(got, `go chroma"`) || strings.Contains(got, `<pre class="TMLverbatim chroma"`)
			if hasChroma != tt.highlighted {
				t.Errorf("highlighted = %v, want %v in:\n%s", hasChroma, tt.highlighted, got)
			}
			if tt.highlighted {
				if strings.Contains(got, "<br") {
					t.Error("highlighted block should not keep <br> line breaks")
				}
				if !strings.Contains(got, "package") || !strings.Contains(got, `<span class="`) {
					t.Errorf("highlighted block lost its code or spans:\n%s", got)
				}
			}
		})
	}

	got, err := r.Render(context.Background(), Document{Title: "T", Body: "<p>x</p>"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, ".chroma") {
		t.Error("highlight stylesheet should be injected")
	}
}

func TestRenderer_HighlightDisabledLeavesBody(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Options{Highlight: false})
	body := `<pre class="TMLverbatim go">package&nbsp;main</pre>`

	got, err := r.Render(context.Background(), Document{Body: body})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, body) {
		t.Errorf("Render() should keep body unchanged, got:\n%s", got)
	}
}

func TestRenderer_AttachDir(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Options{})
	dir := t.TempDir()
	body := `<p><img src="diagram.png" /> <img src="https://example.com/x.png" /></p>`

	got, err := r.Render(context.Background(), Document{Body: body, AttachDir: dir})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, `src="file://`) {
		t.Errorf("relative image should point into the attachment dir:\n%s", got)
	}
	if !strings.Contains(got, `src="https://example.com/x.png"`) {
		t.Errorf("absolute image URL should be unchanged:\n%s", got)
	}
}

func TestNewRenderer_Style(t *testing.T) {
	t.Parallel()

	cssFile := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(cssFile, []byte(".from-file { color: red; }"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name    string
		style   string
		want    string
		wantErr error
	}{
		{"default name", "", ".foswikiDeleteMe", nil},
		{"embedded name", "plain", "font-family: serif", nil},
		{"inline CSS", ".inline { margin: 0 }", ".inline { margin: 0 }", nil},
		{"file path", cssFile, ".from-file", nil},
		{"unknown name", "nonexistent", "", assets.ErrStyleNotFound},
		{"missing file", filepath.Join(t.TempDir(), "missing.css"), "", os.ErrNotExist},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewRenderer(assets.NewEmbeddedLoader(), Options{Style: tt.style})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewRenderer() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRenderer() error = %v", err)
			}
			if !strings.Contains(r.css, tt.want) {
				t.Errorf("css = %q, want it to contain %q", r.css, tt.want)
			}
		})
	}
}

func TestNewRenderer_TemplateErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmplDir := filepath.Join(dir, "templates")
	if err := os.MkdirAll(tmplDir, 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmplDir, "broken.html"), []byte("{{.Body"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	loader, err := assets.NewResolver(dir)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	_, err = NewRenderer(loader, Options{Template: "broken"})
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("NewRenderer(broken) error = %v, want ErrTemplateParse", err)
	}

	_, err = NewRenderer(loader, Options{Template: "missing"})
	if !errors.Is(err, assets.ErrTemplateNotFound) {
		t.Errorf("NewRenderer(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestRenderer_ContextCancelled(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, Document{Body: "<p>x</p>"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}
