package wysiwyg

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/modell-aachen/WysiwygPlugin/internal/config"
	"github.com/modell-aachen/WysiwygPlugin/internal/pipeline"
)

// Converter turns topic markup into editor HTML. It is immutable after
// construction and safe for concurrent use.
type Converter struct {
	cfg      converterConfig
	engine   *pipeline.Engine
	defaults ConversionOptions
}

// NewConverter creates a Converter. Returns an error if the tab width,
// the configured extension tag names or the configuration are invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.cfgSet {
		if c.cfg.cfg == nil {
			return nil, ErrNilConfig
		}
		if err := c.cfg.cfg.Validate(); err != nil {
			return nil, err
		}
		defaults, err := defaultsFromConfig(c.cfg.cfg)
		if err != nil {
			return nil, err
		}
		c.defaults = defaults
	}

	engine, err := pipeline.NewEngine(c.cfg.settings, c.cfg.logger)
	if err != nil {
		return nil, err
	}
	c.engine = engine
	return c, nil
}

func defaultsFromConfig(cfg *config.Config) (ConversionOptions, error) {
	defaults := ConversionOptions{
		Web:          cfg.Context.Web,
		Topic:        cfg.Context.Topic,
		StrictErrors: cfg.Engine.StrictErrors,
	}
	if cfg.Links.URLBase != "" {
		defaults.URLExpander = NewURLBaseExpander(cfg.Links.URLBase)
	}
	if len(cfg.XMLTags) > 0 {
		defaults.XMLTagHandlers = make(map[string]TagHandler, len(cfg.XMLTags))
		for _, tag := range cfg.XMLTags {
			if err := pipeline.ValidateTagName(tag.Name); err != nil {
				return ConversionOptions{}, err
			}
			defaults.XMLTagHandlers[tag.Name] = fixedHandler(tag.Opaque)
		}
	}
	return defaults, nil
}

func fixedHandler(opaque bool) TagHandler {
	return func(string) bool { return opaque }
}

// Convert turns markup into editor HTML.
//
// When placeholders survive restoration the whole input comes back
// escaped inside one protected block, unless StrictErrors is set, in which
// case ErrUnresolvedPlaceholder is returned.
func (c *Converter) Convert(markup string, opts ConversionOptions) (string, error) {
	html, err := c.engine.Convert(markup, c.merge(opts))
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", topicName(opts.Web, opts.Topic), err)
	}
	return html, nil
}

// merge fills zero fields of opts from the converter defaults. Handlers
// given per call replace configured ones of the same name.
func (c *Converter) merge(opts ConversionOptions) pipeline.Options {
	merged := pipeline.Options{
		Web:          opts.Web,
		Topic:        opts.Topic,
		URLExpander:  opts.URLExpander,
		StrictErrors: opts.StrictErrors || c.defaults.StrictErrors,
	}
	if merged.Web == "" {
		merged.Web = c.defaults.Web
	}
	if merged.Topic == "" {
		merged.Topic = c.defaults.Topic
	}
	if merged.URLExpander == nil {
		merged.URLExpander = c.defaults.URLExpander
	}
	switch {
	case len(c.defaults.XMLTagHandlers) == 0:
		merged.XMLTagHandlers = opts.XMLTagHandlers
	case len(opts.XMLTagHandlers) == 0:
		merged.XMLTagHandlers = c.defaults.XMLTagHandlers
	default:
		merged.XMLTagHandlers = maps.Clone(c.defaults.XMLTagHandlers)
		maps.Copy(merged.XMLTagHandlers, opts.XMLTagHandlers)
	}
	return merged
}

func topicName(web, topic string) string {
	switch {
	case web == "" && topic == "":
		return "markup"
	case web == "":
		return topic
	}
	return web + "." + topic
}

var (
	defaultOnce      sync.Once
	defaultConverter *Converter
)

// Convert converts markup with a converter built from default settings.
func Convert(markup string, opts ConversionOptions) (string, error) {
	defaultOnce.Do(func() {
		// Default settings are always valid.
		defaultConverter, _ = NewConverter()
	})
	return defaultConverter.Convert(markup, opts)
}

// Fallback renders markup as a single protected block, the output used
// when conversion cannot restore every placeholder.
func Fallback(markup string) string {
	return pipeline.Fallback(markup)
}

// HTMLToMarkup is the inverse converter the editor saves through. It is
// implemented outside this package.
type HTMLToMarkup interface {
	Convert(html string, opts ConversionOptions) (string, error)
}

// CheckRoundTrip converts markup to HTML and back, and reports
// ErrRoundTripMismatch when the result differs from the input beyond
// trailing whitespace on lines.
func (c *Converter) CheckRoundTrip(markup string, inverse HTMLToMarkup, opts ConversionOptions) error {
	html, err := c.Convert(markup, opts)
	if err != nil {
		return err
	}
	back, err := inverse.Convert(html, opts)
	if err != nil {
		return fmt.Errorf("converting %s back: %w", topicName(opts.Web, opts.Topic), err)
	}
	if normalizeLines(back) != normalizeLines(markup) {
		return fmt.Errorf("%w: %s", ErrRoundTripMismatch, topicName(opts.Web, opts.Topic))
	}
	return nil
}

func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
