// Package config loads the job's TOML configuration file via viper,
// matching the key set the orchestrator, extractor, batcher, translator
// pool, and output formatter all depend on.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mapomagpie/lottr/internal/translator"
)

// TransType selects the output formatter family.
type TransType string

const (
	TransText    TransType = "text"
	TransMTool   TransType = "mtool"
	TransReplace TransType = "replace"
)

// RegexUsage is the tagged usage of one output_regexen entry: exactly one
// of Replace or Capture is set, matching the TOML inline-table shape
// `usage = { replace = "..." }` or `usage = { capture = N }`.
type RegexUsage struct {
	Replace *string `mapstructure:"replace"`
	Capture *int    `mapstructure:"capture"`
}

// IsReplace reports whether this entry is a replace rule.
func (u RegexUsage) IsReplace() bool { return u.Replace != nil }

// IsCapture reports whether this entry is a capture rule.
func (u RegexUsage) IsCapture() bool { return u.Capture != nil }

// OutputRegex is one entry of the configured output_regexen list.
type OutputRegex struct {
	Usage RegexUsage `mapstructure:"usage"`
	Regex string     `mapstructure:"regex"`
}

// BatchizerOptions bounds the token-based batcher.
type BatchizerOptions struct {
	MaxTokens int `mapstructure:"max_tokens"`
}

// MToolOptions configures the map-formatter's soft-wrap column.
type MToolOptions struct {
	LineWidth int `mapstructure:"line_width"`
}

// Config is the full job configuration, matching spec.md §6's
// Configuration key set plus the optional cache_path domain addition.
type Config struct {
	File              string             `mapstructure:"file"`
	TransType         TransType          `mapstructure:"trans_type"`
	From              string             `mapstructure:"from"`
	To                string             `mapstructure:"to"`
	FilterRegexen     []string           `mapstructure:"filter_regexen"`
	CaptureRegex      string             `mapstructure:"capture_regex"`
	ReplaceExpression string             `mapstructure:"replace_expression"`
	OutputRegexen     []OutputRegex      `mapstructure:"output_regexen"`
	BatchizerOpt      BatchizerOptions   `mapstructure:"batchizer_opt"`
	MToolOpt          MToolOptions       `mapstructure:"mtool_opt"`
	ChatGPTOpt        translator.Options `mapstructure:"chatgpt_opt"`
	CachePath         string             `mapstructure:"cache_path"`
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the configuration-error class of fatal checks that
// must happen before any network call: malformed trans_type, and too few
// output_regexen for formatter kinds that require a replace/capture pair.
func (c *Config) Validate() error {
	switch c.TransType {
	case TransText, TransMTool, TransReplace:
	default:
		return fmt.Errorf("config: unknown trans_type %q", c.TransType)
	}
	if len(c.OutputRegexen) < 2 {
		return fmt.Errorf("config: output_regexen requires at least two entries (replace, capture)")
	}
	if !c.OutputRegexen[0].Usage.IsReplace() || !c.OutputRegexen[1].Usage.IsCapture() {
		return fmt.Errorf("config: output_regexen[0] must be a replace rule and output_regexen[1] a capture rule")
	}
	if c.BatchizerOpt.MaxTokens <= 0 {
		return fmt.Errorf("config: batchizer_opt.max_tokens must be positive")
	}
	return nil
}

// LangPair is the (from, to) pair used to scope the translation-memory
// cache.
func (c *Config) LangPair() string {
	return c.From + "-" + c.To
}
