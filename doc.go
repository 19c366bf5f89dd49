// Package wysiwyg converts Foswiki topic markup into the HTML a WYSIWYG
// editor loads.
//
// # Quick Start
//
//	conv, err := wysiwyg.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html, err := conv.Convert("---+ Hello\n\n*bold* text", wysiwyg.ConversionOptions{
//	    Web:   "Main",
//	    Topic: "WebHome",
//	})
//
// Everything the editor cannot represent natively (macros, verbatim
// blocks, unknown HTML, extension tags) is carried through as protected
// blocks whose class names the inverse converter recognises, so that
// editing and saving reproduces the original markup.
//
// # Conversion Pipeline
//
//  1. Opaque blocks (verbatim, literal, sticky, pre, extension tags)
//  2. Directive lines, colour macros and %MACRO{...}% calls
//  3. Raw HTML filtering against the palatable tag list
//  4. Line structure: headings, lists, tables, paragraphs
//  5. Links and inline emphasis
//  6. Placeholder restoration
//
// # Configuration
//
// Engine settings are fixed at construction:
//
//	conv, err := wysiwyg.NewConverter(
//	    wysiwyg.WithTabWidth(4),
//	    wysiwyg.WithPalatableTags("b", "i", "span"),
//	    wysiwyg.WithLogger(logger),
//	)
//
// Per-call settings go in ConversionOptions. A Converter is immutable and
// safe for concurrent use.
package wysiwyg
