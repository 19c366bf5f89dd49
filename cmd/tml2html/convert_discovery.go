package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/modell-aachen/WysiwygPlugin/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .txt extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

const (
	topicExtension = ".txt"
	htmlExtension  = "html"
)

// FileToConvert represents a single topic file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Topic      string // file name without extension
}

// discoverFiles finds all topic files to convert.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateTopicExtension(inputPath); err != nil {
			return nil, err
		}
		outPath, err := resolveOutputPath(inputPath, outputDir, "")
		if err != nil {
			return nil, err
		}
		return []FileToConvert{newFileToConvert(inputPath, outPath)}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || filepath.Ext(path) != topicExtension {
			return nil
		}
		outPath, err := resolveOutputPath(path, outputDir, inputPath)
		if err != nil {
			return err
		}
		files = append(files, newFileToConvert(path, outPath))
		return nil
	})

	return files, err
}

func newFileToConvert(inputPath, outputPath string) FileToConvert {
	return FileToConvert{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Topic:      strings.TrimSuffix(filepath.Base(inputPath), topicExtension),
	}
}

// resolveOutputPath determines the HTML output path for a topic file.
// Files found under baseInputDir keep their relative directory in outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) (string, error) {
	if outputDir != "" && baseInputDir == "" && filepath.Ext(outputDir) == "."+htmlExtension {
		return outputDir, nil
	}

	if outputDir != "" && baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			outputDir = filepath.Join(outputDir, filepath.Dir(relPath))
		}
	}

	return fileutil.ReplaceExtension(inputPath, outputDir, htmlExtension)
}

// validateTopicExtension checks that the file has a .txt extension.
func validateTopicExtension(path string) error {
	if ext := filepath.Ext(path); ext != topicExtension {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}
