package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/modell-aachen/WysiwygPlugin/internal/config"
)

const envPrefix = "TML2HTML_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // TML2HTML_CONFIG: config name or path
	Style      string // TML2HTML_STYLE: preview style name or path
	AssetPath  string // TML2HTML_ASSET_PATH: preview asset directory
	URLBase    string // TML2HTML_URL_BASE: base of expanded topic links
	Web        string // TML2HTML_WEB: default web
	OutputDir  string // TML2HTML_OUTPUT_DIR: default output directory
	Workers    int    // TML2HTML_WORKERS: parallel workers
}

// knownEnvVars lists valid TML2HTML_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TML2HTML_CONFIG":     true,
	"TML2HTML_STYLE":      true,
	"TML2HTML_ASSET_PATH": true,
	"TML2HTML_URL_BASE":   true,
	"TML2HTML_WEB":        true,
	"TML2HTML_OUTPUT_DIR": true,
	"TML2HTML_WORKERS":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed or non-positive TML2HTML_WORKERS values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("TML2HTML_CONFIG"),
		Style:      getenv("TML2HTML_STYLE"),
		AssetPath:  getenv("TML2HTML_ASSET_PATH"),
		URLBase:    getenv("TML2HTML_URL_BASE"),
		Web:        getenv("TML2HTML_WEB"),
		OutputDir:  getenv("TML2HTML_OUTPUT_DIR"),
	}

	if workers := getenv("TML2HTML_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized TML2HTML_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig fills config values the file left empty.
// Precedence: CLI flags > config file > env vars > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" && cfg.Preview.Style == config.DefaultStyle {
		cfg.Preview.Style = env.Style
	}
	if env.AssetPath != "" && cfg.Preview.AssetPath == "" {
		cfg.Preview.AssetPath = env.AssetPath
	}
	if env.URLBase != "" && cfg.Links.URLBase == "" {
		cfg.Links.URLBase = env.URLBase
	}
	if env.Web != "" && cfg.Context.Web == "" {
		cfg.Context.Web = env.Web
	}
}
