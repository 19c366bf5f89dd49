package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// contextFlags holds the topic context and link flags.
type contextFlags struct {
	web     string
	topic   string
	urlBase string
	strict  bool
}

// previewFlags holds standalone preview flags.
type previewFlags struct {
	enabled     bool
	style       string
	assetPath   string
	noHighlight bool
}

// convertFlags holds all flags for the convert and config commands.
type convertFlags struct {
	common  commonFlags
	output  string
	workers int
	context contextFlags
	preview previewFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addContextFlags adds topic context flags to a FlagSet.
func addContextFlags(fs *flag.FlagSet, f *contextFlags) {
	fs.StringVar(&f.web, "web", "", "web the topics belong to")
	fs.StringVar(&f.topic, "topic", "", "topic name (default: file name)")
	fs.StringVar(&f.urlBase, "url-base", "", "expand topic links under this URL")
	fs.BoolVar(&f.strict, "strict", false, "fail instead of protecting the whole topic")
}

// addPreviewFlags adds preview flags to a FlagSet.
func addPreviewFlags(fs *flag.FlagSet, f *previewFlags) {
	fs.BoolVar(&f.enabled, "preview", false, "write standalone HTML documents")
	fs.StringVar(&f.style, "style", "", "preview style name, CSS file or inline CSS")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "disable syntax highlighting in previews")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(name string, f *convertFlags, usage io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(usage)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addContextFlags(fs, &f.context)
	addPreviewFlags(fs, &f.preview)

	fs.Usage = func() { printConvertUsage(usage) }
	return fs
}

// parseConvertFlags parses command flags and returns positional args.
func parseConvertFlags(name string, args []string, usage io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(name, f, usage)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
