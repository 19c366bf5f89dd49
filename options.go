package wysiwyg

import (
	"go.uber.org/zap"

	"github.com/modell-aachen/WysiwygPlugin/internal/config"
	"github.com/modell-aachen/WysiwygPlugin/internal/pipeline"
)

// TagHandler decides how an extension tag occurrence is carried through.
// Returning true protects the whole occurrence; false protects only the
// opening and closing tags and leaves the content editable. Panics
// propagate to the caller of Convert.
type TagHandler = pipeline.TagHandler

// URLExpander rewrites a link target into the URL shown in the editor.
type URLExpander = pipeline.URLExpander

// LinkContext is the topic a link was found in.
type LinkContext = pipeline.LinkContext

// DefaultTabWidth is the number of spaces one indentation level takes.
const DefaultTabWidth = pipeline.DefaultTabWidth

// ConversionOptions are the per-call conversion settings. Zero fields
// fall back to the converter's configured defaults.
type ConversionOptions struct {
	Web            string
	Topic          string
	URLExpander    URLExpander
	XMLTagHandlers map[string]TagHandler
	// StrictErrors returns ErrUnresolvedPlaceholder instead of protecting
	// the whole input when restoration fails.
	StrictErrors bool
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds construction settings before the engine is built.
type converterConfig struct {
	settings pipeline.Settings
	logger   *zap.Logger
	cfg      *config.Config
	cfgSet   bool
}

// WithConfig applies a loaded configuration: engine settings, the default
// web and topic, the link base and the registered extension tags. Options
// given after it override its engine settings.
func WithConfig(cfg *config.Config) Option {
	return func(c *Converter) {
		c.cfg.cfg = cfg
		c.cfg.cfgSet = true
		if cfg == nil {
			return
		}
		c.cfg.settings = pipeline.Settings{
			TabWidth:      cfg.Engine.TabWidth,
			PalatableTags: cfg.Engine.PalatableTags,
			ProtectedTags: cfg.Engine.ProtectedTags,
		}
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = logger
	}
}

// WithPalatableTags replaces the HTML tags passed through to the editor.
func WithPalatableTags(tags ...string) Option {
	return func(c *Converter) {
		c.cfg.settings.PalatableTags = tags
	}
}

// WithTabWidth sets the spaces per indentation level (1-8).
func WithTabWidth(width int) Option {
	return func(c *Converter) {
		c.cfg.settings.TabWidth = width
	}
}
