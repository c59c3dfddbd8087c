// Package config loads surqls configuration.
//
// Values are layered, lowest to highest priority: built-in defaults, the
// config file (surqls.yaml, surqls.yml or surqls.toml), SURQLS_ environment
// variables, then command line flags that were explicitly set.
package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/surqls/pkg/core"
)

// Config holds all surqls configuration options.
type Config struct {
	LogLevel    string            `koanf:"log_level"`
	Schema      []string          `koanf:"schema"`
	Watch       bool              `koanf:"watch"`
	Output      OutputConfig      `koanf:"output"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
	// Root is the directory relative schema patterns are resolved against.
	Root string `koanf:"-"`
}

// OutputConfig controls how the CLI renders results.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, yaml
	Color  string `koanf:"color"`  // auto, always, never
}

// DiagnosticsConfig controls which diagnostics are reported.
type DiagnosticsConfig struct {
	Max         int           `koanf:"max"`
	MinSeverity core.Severity `koanf:"min_severity"`
}

// Allowed values for enumerated options.
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	OutputFormats = []string{"text", "json", "yaml"}
	ColorModes    = []string{"auto", "always", "never"}
)

// Validate checks enumerated options and limits.
func (c *Config) Validate() error {
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (want one of %v)", c.LogLevel, LogLevels)
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q (want one of %v)", c.Output.Format, OutputFormats)
	}
	if !slices.Contains(ColorModes, c.Output.Color) {
		return fmt.Errorf("invalid output.color %q (want one of %v)", c.Output.Color, ColorModes)
	}
	if c.Diagnostics.Max < 0 {
		return fmt.Errorf("diagnostics.max must not be negative, got %d", c.Diagnostics.Max)
	}
	return nil
}
