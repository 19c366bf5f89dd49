package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	wysiwyg "github.com/modell-aachen/WysiwygPlugin"
	"github.com/modell-aachen/WysiwygPlugin/internal/assets"
	"github.com/modell-aachen/WysiwygPlugin/internal/config"
	"github.com/modell-aachen/WysiwygPlugin/internal/fileutil"
	"github.com/modell-aachen/WysiwygPlugin/internal/preview"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput         = errors.New("no input specified")
	ErrReadTopic       = errors.New("failed to read topic file")
	ErrWriteHTML       = errors.New("failed to write HTML file")
	ErrCreateOutputDir = errors.New("failed to create output directory")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinInput selects standard input and output instead of files.
const stdinInput = "-"

// TopicConverter is the conversion surface the CLI needs.
type TopicConverter interface {
	Convert(markup string, opts wysiwyg.ConversionOptions) (string, error)
}

// Compile-time interface implementation check.
var _ TopicConverter = (*wysiwyg.Converter)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	converter TopicConverter
	renderer  *preview.Renderer // nil unless --preview
	web       string
	topic     string // fixed topic name; empty derives it from the file name
	logger    *zap.Logger
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags("convert", args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())
	if flags.workers == 0 {
		flags.workers = envCfg.Workers
	}
	if flags.output == "" {
		flags.output = envCfg.OutputDir
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadEffectiveConfig(flags, envCfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	defer func() { _ = logger.Sync() }()

	converter, err := wysiwyg.NewConverter(wysiwyg.WithConfig(cfg), wysiwyg.WithLogger(logger))
	if err != nil {
		return err
	}

	params := &conversionParams{
		converter: converter,
		web:       cfg.Context.Web,
		topic:     cfg.Context.Topic,
		logger:    logger,
	}
	if flags.preview.enabled {
		if params.renderer, err = newPreviewRenderer(cfg.Preview, logger); err != nil {
			return err
		}
	}

	if len(positional) == 0 {
		return ErrNoInput
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: convert takes one input, got %d", ErrUsage, len(positional))
	}
	inputPath := positional[0]

	if inputPath == stdinInput {
		return convertStream(ctx, env.Stdin, env.Stdout, params)
	}

	files, err := discoverFiles(inputPath, flags.output)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no %s topics found in %s", ErrNoInput, topicExtension, inputPath)
	}

	workers := resolvePoolSize(flags.workers)
	logger.Debug("converting", zap.Int("files", len(files)), zap.Int("workers", workers))

	results := convertBatch(ctx, workers, files, params)
	return printResults(results, flags.common.quiet, flags.common.verbose, env)
}

// newPreviewRenderer builds the preview renderer from the preview config.
func newPreviewRenderer(cfg config.PreviewConfig, logger *zap.Logger) (*preview.Renderer, error) {
	loader, err := assets.NewResolver(cfg.AssetPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("preview assets",
		zap.Bool("custom", loader.HasCustomLoader()),
		zap.String("style", cfg.Style),
		zap.Bool("highlight", cfg.Highlight))
	return preview.NewRenderer(loader, preview.Options{
		Style:          cfg.Style,
		Highlight:      cfg.Highlight,
		HighlightStyle: cfg.HighlightStyle,
	})
}

// convertStream converts markup read from r and writes the result to w.
func convertStream(ctx context.Context, r io.Reader, w io.Writer, params *conversionParams) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadTopic, err)
	}
	out, err := render(ctx, string(content), params.topic, "", params)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// convertBatch processes files concurrently with a bounded number of workers.
// The converter is shared: it is safe for concurrent use.
func convertBatch(ctx context.Context, workers int, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(max(workers, 1), len(files))
	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrReadTopic, err))
	}

	topic := params.topic
	if topic == "" {
		topic = f.Topic
	}
	out, err := render(ctx, string(content), topic, filepath.Dir(f.InputPath), params)
	if err != nil {
		return done(err)
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return done(fmt.Errorf("%w: %v", ErrCreateOutputDir, err))
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, out, filePermissions); err != nil {
		return done(fmt.Errorf("%w: %v", ErrWriteHTML, err))
	}

	params.logger.Debug("converted topic",
		zap.String("input", f.InputPath),
		zap.String("output", f.OutputPath),
		zap.Duration("duration", time.Since(start)))
	return done(nil)
}

// render converts one topic and, in preview mode, wraps it in a document.
func render(ctx context.Context, markup, topic, attachDir string, params *conversionParams) (string, error) {
	opts := wysiwyg.ConversionOptions{Web: params.web, Topic: topic}
	html, err := params.converter.Convert(markup, opts)
	if err != nil {
		return "", err
	}
	if params.renderer == nil {
		return html, nil
	}
	return params.renderer.Render(ctx, preview.Document{
		Title:     documentTitle(params.web, topic),
		Body:      html,
		AttachDir: attachDir,
	})
}

func documentTitle(web, topic string) string {
	if web == "" {
		return topic
	}
	return web + "." + topic
}

// printResults reports each conversion and returns the per-file errors
// combined, each prefixed with its input path.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) error {
	var errs error
	var failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.InputPath, r.Err))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	return errs
}
