package config

import "github.com/leapstack-labs/surqls/pkg/core"

// Config file names, in lookup order.
var ConfigFileNames = []string{"surqls.yaml", "surqls.yml", "surqls.toml"}

// EnvPrefix prefixes environment variables. A double underscore separates
// nested keys: SURQLS_OUTPUT__FORMAT sets output.format.
const EnvPrefix = "SURQLS_"

// Default configuration values.
const (
	DefaultLogLevel     = "warn"
	DefaultOutputFormat = "text"
	DefaultColor        = "auto"
)

// Defaults returns the built-in configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":                DefaultLogLevel,
		"schema":                   []string{},
		"watch":                    false,
		"output.format":            DefaultOutputFormat,
		"output.color":             DefaultColor,
		"diagnostics.max":          0,
		"diagnostics.min_severity": core.SeverityHint.String(),
	}
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		Output:      OutputConfig{Format: DefaultOutputFormat, Color: DefaultColor},
		Diagnostics: DiagnosticsConfig{MinSeverity: core.SeverityHint},
	}
}
