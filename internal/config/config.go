package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"

	"github.com/modell-aachen/WysiwygPlugin/internal/fileutil"
	"github.com/modell-aachen/WysiwygPlugin/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field limits.
const (
	MinTabWidth        = 1
	MaxTabWidth        = 8
	DefaultTabWidth    = 3
	MaxTagNameLength   = 64
	MaxTagListLength   = 256
	MaxWebLength       = 255
	MaxTopicLength     = 255
	MaxURLLength       = 2048
	MaxStyleNameLength = 100
)

// DefaultStyle is the preview stylesheet used when none is configured.
const DefaultStyle = "default"

// DefaultHighlightStyle is the chroma style used for verbatim blocks.
const DefaultHighlightStyle = "github"

var tagNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)

// Config holds all configuration for markup conversion.
type Config struct {
	Engine  EngineConfig   `yaml:"engine"`
	Context ContextConfig  `yaml:"context"`
	Links   LinksConfig    `yaml:"links"`
	XMLTags []XMLTagConfig `yaml:"xmlTags"`
	Preview PreviewConfig  `yaml:"preview"`
}

// EngineConfig holds settings fixed when the converter is built.
type EngineConfig struct {
	TabWidth      int      `yaml:"tabWidth"`      // spaces per indent level (default: 3)
	PalatableTags []string `yaml:"palatableTags"` // replaces the built-in list when set
	ProtectedTags []string `yaml:"protectedTags"` // always opaque
	StrictErrors  bool     `yaml:"strictErrors"`  // fail instead of protecting the whole input
}

// ContextConfig names the topic conversions run in.
type ContextConfig struct {
	Web   string `yaml:"web"`
	Topic string `yaml:"topic"`
}

// LinksConfig controls link target expansion.
type LinksConfig struct {
	URLBase string `yaml:"urlBase"` // Empty = leave targets untouched
}

// XMLTagConfig registers an extension tag. Opaque tags are protected as a
// whole block; the others keep their content editable.
type XMLTagConfig struct {
	Name   string `yaml:"name"`
	Opaque bool   `yaml:"opaque"`
}

// PreviewConfig controls standalone preview documents.
type PreviewConfig struct {
	Style          string `yaml:"style"`     // style name, CSS file path or CSS content
	AssetPath      string `yaml:"assetPath"` // Empty = use embedded assets
	Highlight      bool   `yaml:"highlight"`
	HighlightStyle string `yaml:"highlightStyle"`
}

// Validate checks bounds and names, reporting every problem found.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	var err error

	if c.Engine.TabWidth != 0 && (c.Engine.TabWidth < MinTabWidth || c.Engine.TabWidth > MaxTabWidth) {
		err = multierr.Append(err, fmt.Errorf("%w: engine.tabWidth: must be between %d and %d, got %d",
			ErrInvalidConfig, MinTabWidth, MaxTabWidth, c.Engine.TabWidth))
	}
	err = multierr.Append(err, validateTagList("engine.palatableTags", c.Engine.PalatableTags))
	err = multierr.Append(err, validateTagList("engine.protectedTags", c.Engine.ProtectedTags))

	err = multierr.Append(err, validateFieldLength("context.web", c.Context.Web, MaxWebLength))
	err = multierr.Append(err, validateFieldLength("context.topic", c.Context.Topic, MaxTopicLength))
	err = multierr.Append(err, validateFieldLength("links.urlBase", c.Links.URLBase, MaxURLLength))

	seen := make(map[string]bool, len(c.XMLTags))
	for i, tag := range c.XMLTags {
		field := fmt.Sprintf("xmlTags[%d].name", i)
		if e := validateTagName(field, tag.Name); e != nil {
			err = multierr.Append(err, e)
			continue
		}
		if seen[tag.Name] {
			err = multierr.Append(err, fmt.Errorf("%w: %s: duplicate tag %q", ErrInvalidConfig, field, tag.Name))
		}
		seen[tag.Name] = true
	}

	err = multierr.Append(err, validateFieldLength("preview.style", c.Preview.Style, MaxURLLength))
	err = multierr.Append(err, validateFieldLength("preview.assetPath", c.Preview.AssetPath, MaxURLLength))
	err = multierr.Append(err, validateFieldLength("preview.highlightStyle", c.Preview.HighlightStyle, MaxStyleNameLength))

	return err
}

func validateTagList(field string, names []string) error {
	if len(names) > MaxTagListLength {
		return fmt.Errorf("%w: %s (%d tags, max %d)", ErrFieldTooLong, field, len(names), MaxTagListLength)
	}
	var err error
	for i, name := range names {
		err = multierr.Append(err, validateTagName(fmt.Sprintf("%s[%d]", field, i), name))
	}
	return err
}

func validateTagName(field, name string) error {
	if err := validateFieldLength(field, name, MaxTagNameLength); err != nil {
		return err
	}
	if !tagNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %s: invalid tag name %q", ErrInvalidConfig, field, name)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{TabWidth: DefaultTabWidth},
		Preview: PreviewConfig{
			Style:          DefaultStyle,
			Highlight:      true,
			HighlightStyle: DefaultHighlightStyle,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CandidatePaths lists where a config name is looked up, in search order:
// the current directory, then the user config directory (tml2html/),
// each with .yaml before .yml.
func CandidatePaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "tml2html", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first candidate path that exists.
func resolveConfigPath(name string) (string, error) {
	paths := CandidatePaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
