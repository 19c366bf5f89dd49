package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/modell-aachen/WysiwygPlugin/internal/config"
	"github.com/modell-aachen/WysiwygPlugin/internal/fileutil"
	"github.com/modell-aachen/WysiwygPlugin/internal/hints"
	"github.com/modell-aachen/WysiwygPlugin/internal/yamlutil"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags("config", args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}

	cfg, err := loadEffectiveConfig(flags, loadEnvConfig(env.Getenv))
	if err != nil {
		return err
	}
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}

// loadEffectiveConfig layers defaults, the config file, environment
// variables and flags, then validates the result.
func loadEffectiveConfig(flags *convertFlags, envCfg *envConfig) (*config.Config, error) {
	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.CandidatePaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.context.web != "" {
		cfg.Context.Web = flags.context.web
	}
	if flags.context.topic != "" {
		cfg.Context.Topic = flags.context.topic
	}
	if flags.context.urlBase != "" {
		cfg.Links.URLBase = flags.context.urlBase
	}
	if flags.context.strict {
		cfg.Engine.StrictErrors = true
	}
	if flags.preview.style != "" {
		cfg.Preview.Style = flags.preview.style
	}
	if flags.preview.assetPath != "" {
		cfg.Preview.AssetPath = flags.preview.assetPath
	}
	if flags.preview.noHighlight {
		cfg.Preview.Highlight = false
	}
}
