// Package preview wraps converter output in a standalone HTML document
// for viewing outside the editor.
//
// A preview injects a stylesheet, syntax-highlights verbatim blocks that
// name a language in their class, and points relative image paths at the
// topic's attachment directory. Preview output is for reading only and
// does not round trip back to markup.
package preview
