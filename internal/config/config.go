// Package config loads porenet-mcp settings from a TOML file and the
// environment.
//
// Every setting has a default, so a missing file or a file that names only a
// few keys is fine. Tool arguments sent by the host override these defaults
// per call.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/porenet-mcp/internal/poreseg"
)

// Environment variables consulted by FromEnv.
const (
	EnvConfigPath = "PORENET_MCP_CONFIG"
	EnvLogLevel   = "PORENET_MCP_LOG_LEVEL"
)

// Log levels. Debug adds per-stage timings; trace adds per-iteration detail.
const (
	LevelInfo  = "info"
	LevelDebug = "debug"
	LevelTrace = "trace"
)

// Config is the full server configuration.
type Config struct {
	Extraction ExtractionConfig `toml:"extraction"`
	Mask       MaskConfig       `toml:"mask"`
	Log        LogConfig        `toml:"log"`
}

// ExtractionConfig holds pipeline defaults.
type ExtractionConfig struct {
	Sigma   float64 `toml:"sigma"`
	Workers int     `toml:"workers"`
	Strict  bool    `toml:"strict"`
}

// MaskConfig controls how slice images become masks.
type MaskConfig struct {
	Threshold int `toml:"threshold"` // grayscale level at or above which a pixel is pore
}

// LogConfig selects log verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Extraction: ExtractionConfig{Sigma: 0, Workers: runtime.NumCPU()},
		Mask:       MaskConfig{Threshold: 128},
		Log:        LogConfig{Level: LevelInfo},
	}
}

// Load decodes the TOML file at path over the defaults and validates the
// result. Unknown keys are an error so typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not decode TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads the file named by PORENET_MCP_CONFIG, if set, then applies
// PORENET_MCP_LOG_LEVEL.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Extraction.Workers < 1 {
		return fmt.Errorf("extraction.workers must be at least 1, got %d", c.Extraction.Workers)
	}
	if math.IsNaN(c.Extraction.Sigma) || math.IsInf(c.Extraction.Sigma, 0) {
		return fmt.Errorf("extraction.sigma must be a finite number, got %v", c.Extraction.Sigma)
	}
	if c.Mask.Threshold < 1 || c.Mask.Threshold > 255 {
		return fmt.Errorf("mask.threshold must be in [1,255], got %d", c.Mask.Threshold)
	}
	switch c.Log.Level {
	case LevelInfo, LevelDebug, LevelTrace:
	default:
		return fmt.Errorf("log.level must be one of info, debug, trace; got %q", c.Log.Level)
	}
	return nil
}

// Options converts the extraction defaults to pipeline options.
func (c Config) Options() poreseg.Options {
	return poreseg.Options{
		Sigma:   c.Extraction.Sigma,
		Workers: c.Extraction.Workers,
		Strict:  c.Extraction.Strict,
	}
}
