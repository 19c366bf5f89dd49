package main

import (
	"errors"
	"os"

	wysiwyg "github.com/modell-aachen/WysiwygPlugin"
	"github.com/modell-aachen/WysiwygPlugin/internal/assets"
	"github.com/modell-aachen/WysiwygPlugin/internal/config"
	"github.com/modell-aachen/WysiwygPlugin/internal/hints"
)

// Exit codes for the tml2html CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
// For aggregated errors the first matching class wins, I/O before usage.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadTopic) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, wysiwyg.ErrInvalidTabWidth) ||
		errors.Is(err, wysiwyg.ErrEmptyTagName) ||
		errors.Is(err, wysiwyg.ErrInvalidTagName) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "" when none applies.
// Config lookup failures carry their hint in the message already.
func hintFor(err error) string {
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().Styles())
	case errors.Is(err, wysiwyg.ErrUnresolvedPlaceholder):
		return hints.ForUnresolvedPlaceholder()
	case errors.Is(err, wysiwyg.ErrEmptyTagName), errors.Is(err, wysiwyg.ErrInvalidTagName):
		return hints.ForInvalidTagName()
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
