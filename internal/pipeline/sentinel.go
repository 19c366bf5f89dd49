package pipeline

import (
	"regexp"
	"strings"
)

// Reserved control characters. User input never contains them after
// Normalize, so any of them left in the output means restoration failed.
const (
	// markerChar starts a synthetic container marker line.
	markerChar = "\x00"
	// tokenChar delimits the id of a placeholder token.
	tokenChar = "\x01"
	// nbspChar stands for a non-breaking space the editor needs to place a caret.
	nbspChar = "\x02"

	sentinels = markerChar + tokenChar + nbspChar
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Any reserved character
	sentinelPattern = regexp.MustCompile(`[\x00-\x02]`)
)

// Normalize converts line endings to \n and replaces reserved characters
// with U+FFFD so that user content can never forge a placeholder.
func Normalize(text string) string {
	text = crlfOrCR.ReplaceAllString(text, "\n")
	return sentinelPattern.ReplaceAllString(text, "\uFFFD")
}

// hasSentinel reports whether text still carries reserved characters.
func hasSentinel(text string) bool {
	return strings.ContainsAny(text, sentinels)
}
