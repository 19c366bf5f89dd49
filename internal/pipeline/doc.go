// Package pipeline implements the wiki-markup-to-HTML conversion engine.
//
// The engine is a sequence of text rewrites over a single string:
//   - sentinel normalization
//   - block extraction (verbatim, literal, sticky, pre, extension tags)
//   - directive extraction (Set and Local lines)
//   - colour and macro protection
//   - raw HTML filtering against the palatable allow-list
//   - entity, URI and angle-bracket protection
//   - structural line parsing (paragraphs, headings, lists, tables)
//   - link protection and inline emphasis
//   - restoration of protected fragments
//
// Protected text is moved into a per-run arena of fragments and replaced
// in the stream by a placeholder token carrying only the fragment id.
// Restoration renders each fragment with the wrapper element and class the
// inverse converter recognizes, so the class names emitted here are a wire
// format and must stay stable.
package pipeline
