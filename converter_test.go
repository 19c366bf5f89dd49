package wysiwyg

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/modell-aachen/WysiwygPlugin/internal/config"
)

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)))}, opts...)
	c, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return c
}

func TestNewConverter(t *testing.T) {
	t.Parallel()

	badTags := config.DefaultConfig()
	badTags.XMLTags = []config.XMLTagConfig{{Name: "9lives"}}

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "defaults"},
		{name: "tab width", opts: []Option{WithTabWidth(4)}},
		{name: "tab width out of range", opts: []Option{WithTabWidth(20)}, wantErr: ErrInvalidTabWidth},
		{name: "default config", opts: []Option{WithConfig(config.DefaultConfig())}},
		{name: "nil config", opts: []Option{WithConfig(nil)}, wantErr: ErrNilConfig},
		{name: "invalid config", opts: []Option{WithConfig(badTags)}, wantErr: config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewConverter(tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewConverter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"emphasis", "*bold* and _em_", "<p>\n<b>bold</b> and <i>em</i>\n</p>"},
		{"heading", "---+ Title", "<h1>Title</h1>"},
		{"macro", "%TOPIC%", "<p>\n<span class=\"WYSIWYG_PROTECTED\">%TOPIC%</span>\n</p>"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.Convert(tt.input, ConversionOptions{})
			if err != nil {
				t.Fatalf("Convert(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConverter_PalatableTags(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, WithPalatableTags("b"))
	got, err := c.Convert("<b>x</b> <i>y</i>", ConversionOptions{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(got, "<b>x</b>") {
		t.Errorf("Convert() = %q, want <b> passed through", got)
	}
	if strings.Contains(got, "<i>") {
		t.Errorf("Convert() = %q, want <i> protected", got)
	}
}

func TestConverter_ConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Context = config.ContextConfig{Web: "Sandbox", Topic: "TestTopic"}
	cfg.Links.URLBase = "/bin/view/"
	cfg.XMLTags = []config.XMLTagConfig{
		{Name: "graphviz", Opaque: true},
		{Name: "comment", Opaque: false},
	}
	c := newTestConverter(t, WithConfig(cfg))

	t.Run("link expands against configured web", func(t *testing.T) {
		t.Parallel()

		got, err := c.Convert("See WikiWord", ConversionOptions{})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, `href="/bin/view/Sandbox/WikiWord"`) {
			t.Errorf("Convert() = %q, want link under the configured web", got)
		}
	})

	t.Run("call options override configured web", func(t *testing.T) {
		t.Parallel()

		got, err := c.Convert("See WikiWord", ConversionOptions{Web: "Main"})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, `href="/bin/view/Main/WikiWord"`) {
			t.Errorf("Convert() = %q, want link under the call's web", got)
		}
	})

	t.Run("opaque extension tag", func(t *testing.T) {
		t.Parallel()

		got, err := c.Convert("<graphviz>*a*</graphviz>", ConversionOptions{})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, `<span class="WYSIWYG_PROTECTED">&#60;graphviz&#62;*a*&#60;/graphviz&#62;</span>`) {
			t.Errorf("Convert() = %q, want the whole tag protected", got)
		}
	})

	t.Run("editable extension tag", func(t *testing.T) {
		t.Parallel()

		got, err := c.Convert("<comment>*a*</comment>", ConversionOptions{})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, "<b>a</b>") {
			t.Errorf("Convert() = %q, want the content editable", got)
		}
	})

	t.Run("call handler replaces configured one", func(t *testing.T) {
		t.Parallel()

		opts := ConversionOptions{XMLTagHandlers: map[string]TagHandler{
			"graphviz": func(string) bool { return false },
		}}
		got, err := c.Convert("<graphviz>*a*</graphviz>", opts)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, "<b>a</b>") {
			t.Errorf("Convert() = %q, want the call's handler to win", got)
		}
	})
}

func TestConverter_StrictFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Engine.StrictErrors = true
	c := newTestConverter(t, WithConfig(cfg))

	got, err := c.Convert("plain", ConversionOptions{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if got != "<p>\nplain\n</p>" {
		t.Errorf("Convert() = %q", got)
	}
}

func TestConverter_InvalidHandlerName(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t)
	opts := ConversionOptions{
		Web:            "Main",
		Topic:          "WebHome",
		XMLTagHandlers: map[string]TagHandler{"": func(string) bool { return true }},
	}
	_, err := c.Convert("x", opts)
	if !errors.Is(err, ErrEmptyTagName) {
		t.Fatalf("Convert() error = %v, want ErrEmptyTagName", err)
	}
	if !strings.Contains(err.Error(), "Main.WebHome") {
		t.Errorf("error %q should name the topic", err)
	}
}

func TestConverter_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	c, err := NewConverter(WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if _, err := c.Convert("*x*", ConversionOptions{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if logs.FilterMessage("converted markup").Len() != 1 {
		t.Errorf("expected one debug entry, got %v", logs.All())
	}
}

func TestConvert_PackageLevel(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Convert("_x_", ConversionOptions{})
		}()
	}
	wg.Wait()

	for i, got := range results {
		if got != "<p>\n<i>x</i>\n</p>" {
			t.Errorf("Convert() in goroutine %d = %q", i, got)
		}
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	got := Fallback("a <b>\nc")
	want := `<div class="WYSIWYG_PROTECTED">a&nbsp;&#60;b&#62;<br />c</div>`
	if got != want {
		t.Errorf("Fallback() = %q, want %q", got, want)
	}
}

// inverseFunc adapts a function to HTMLToMarkup.
type inverseFunc func(html string, opts ConversionOptions) (string, error)

func (f inverseFunc) Convert(html string, opts ConversionOptions) (string, error) {
	return f(html, opts)
}

func TestConverter_CheckRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t)
	failing := errors.New("inverse failed")

	tests := []struct {
		name    string
		markup  string
		inverse inverseFunc
		wantErr error
	}{
		{
			name:    "identical",
			markup:  "*x*\n",
			inverse: func(string, ConversionOptions) (string, error) { return "*x*", nil },
		},
		{
			name:    "trailing whitespace ignored",
			markup:  "a  \nb",
			inverse: func(string, ConversionOptions) (string, error) { return "a\r\nb\n\n", nil },
		},
		{
			name:    "changed",
			markup:  "*x*",
			inverse: func(string, ConversionOptions) (string, error) { return "x", nil },
			wantErr: ErrRoundTripMismatch,
		},
		{
			name:    "inverse error",
			markup:  "*x*",
			inverse: func(string, ConversionOptions) (string, error) { return "", failing },
			wantErr: failing,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := c.CheckRoundTrip(tt.markup, tt.inverse, ConversionOptions{Web: "Main", Topic: "T"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckRoundTrip() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
