package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Sentinel errors.
var (
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder in output")
	ErrInvalidTabWidth       = errors.New("invalid tab width")
	ErrEmptyTagName          = errors.New("empty tag name")
	ErrInvalidTagName        = errors.New("invalid tag name")
)

// DefaultTabWidth is the number of spaces one indentation level takes.
const DefaultTabWidth = 3

// MaxTabWidth bounds the configurable indentation width.
const MaxTabWidth = 8

var tagNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)

// Settings are the engine parameters fixed at construction.
type Settings struct {
	TabWidth int
	// PalatableTags replaces DefaultPalatableTags when non-empty.
	PalatableTags []string
	// ProtectedTags replaces DefaultProtectedTags when non-nil.
	ProtectedTags []string
}

// Options are the per-call conversion parameters.
type Options struct {
	Web            string
	Topic          string
	URLExpander    URLExpander
	XMLTagHandlers map[string]TagHandler
	StrictErrors   bool
}

// Engine converts wiki markup to editor HTML. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	patterns  *linePatterns
	palatable map[string]bool
	protected map[string]bool
	logger    *zap.Logger
}

// NewEngine validates settings and precompiles the engine's patterns.
// A nil logger disables logging.
func NewEngine(s Settings, logger *zap.Logger) (*Engine, error) {
	if s.TabWidth == 0 {
		s.TabWidth = DefaultTabWidth
	}
	if s.TabWidth < 1 || s.TabWidth > MaxTabWidth {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidTabWidth, s.TabWidth, MaxTabWidth)
	}
	palatable := s.PalatableTags
	if len(palatable) == 0 {
		palatable = DefaultPalatableTags
	}
	protected := s.ProtectedTags
	if protected == nil {
		protected = DefaultProtectedTags
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		patterns:  compileLinePatterns(s.TabWidth),
		palatable: tagSet(palatable),
		protected: tagSet(protected),
		logger:    logger,
	}, nil
}

func tagSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return set
}

// run is the state of one conversion. Nothing in it outlives the call.
type run struct {
	engine *Engine
	opts   Options
	arena  *Arena
}

// Convert turns markup into editor HTML.
//
// If placeholders survive restoration, the whole input is returned escaped
// inside one protected block, or ErrUnresolvedPlaceholder is returned when
// opts.StrictErrors is set. Panics raised by tag handlers or the URL
// expander propagate to the caller.
func (e *Engine) Convert(markup string, opts Options) (string, error) {
	for name := range opts.XMLTagHandlers {
		if err := ValidateTagName(name); err != nil {
			return "", err
		}
	}

	r := &run{engine: e, opts: opts, arena: NewArena()}
	text := Normalize(markup)
	text = r.extractBlocks(text)
	text = r.extractDirectives(text)
	text = r.convertColours(text)
	text = r.protectMacros(text)
	text = r.filterHTML(text)
	text = r.protectEntities(text)
	text = r.parseLines(text)
	text = r.protectLinks(text)
	text = applyEmphasis(text)
	text = r.arena.ResolveAll(text)
	return r.finish(markup, text)
}

func (r *run) finish(markup, text string) (string, error) {
	text = strings.ReplaceAll(text, nbspChar, "&nbsp;")
	if !hasSentinel(text) {
		r.engine.logger.Debug("converted markup",
			zap.Int("inputBytes", len(markup)),
			zap.Int("outputBytes", len(text)),
			zap.Int("fragments", r.arena.Len()))
		return text, nil
	}
	if r.opts.StrictErrors {
		return "", fmt.Errorf("%w: %d fragments, topic %s.%s", ErrUnresolvedPlaceholder, r.arena.Len(), r.opts.Web, r.opts.Topic)
	}
	r.engine.logger.Warn("placeholders left after restore, protecting whole input",
		zap.String("web", r.opts.Web),
		zap.String("topic", r.opts.Topic),
		zap.Int("fragments", r.arena.Len()))
	return Fallback(markup), nil
}

// Fallback renders markup as a single protected block.
func Fallback(markup string) string {
	return `<div class="WYSIWYG_PROTECTED">` + EscapeVerbatim(markup) + "</div>"
}

// ValidateTagName checks an extension tag name.
func ValidateTagName(name string) error {
	if name == "" {
		return ErrEmptyTagName
	}
	if !tagNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTagName, name)
	}
	return nil
}
