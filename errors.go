package wysiwyg

import (
	"errors"

	"github.com/modell-aachen/WysiwygPlugin/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrUnresolvedPlaceholder = pipeline.ErrUnresolvedPlaceholder
	ErrInvalidTabWidth       = pipeline.ErrInvalidTabWidth
	ErrEmptyTagName          = pipeline.ErrEmptyTagName
	ErrInvalidTagName        = pipeline.ErrInvalidTagName

	ErrNilConfig         = errors.New("config cannot be nil")
	ErrRoundTripMismatch = errors.New("round trip changed the markup")
)
