// Package config loads csvshard settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = ".csvshard.yaml"

// Config holds all csvshard configuration.
type Config struct {
	Shard   ShardConfig   `yaml:"shard"`
	CSV     CSVConfig     `yaml:"csv"`
	Merge   MergeConfig   `yaml:"merge"`
	Logging LoggingConfig `yaml:"logging"`
}

// ShardConfig configures the shard command.
type ShardConfig struct {
	// Rows is the number of data rows per shard.
	Rows int `yaml:"rows"`
}

// CSVConfig configures parsing and writing of CSV files.
type CSVConfig struct {
	// Comma is the field delimiter, a single character.
	Comma            string `yaml:"comma"`
	TrimLeadingSpace bool   `yaml:"trim_leading_space"`
}

// MergeConfig configures the unshard command.
type MergeConfig struct {
	// UnionHeaders merges shards whose columns differ instead of failing.
	UnionHeaders bool `yaml:"union_headers"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Shard: ShardConfig{Rows: 10000},
		CSV:   CSVConfig{Comma: ","},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults.
// Environment overrides are applied on top in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CSVSHARD_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CSVSHARD_ROWS: %w", err)
		}
		c.Shard.Rows = n
	}
	if v := os.Getenv("CSVSHARD_COMMA"); v != "" {
		c.CSV.Comma = v
	}
	if v := os.Getenv("CSVSHARD_UNION_HEADERS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CSVSHARD_UNION_HEADERS: %w", err)
		}
		c.Merge.UnionHeaders = b
	}
	if v := os.Getenv("CSVSHARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Shard.Rows < 1 {
		return fmt.Errorf("shard.rows must be >= 1, got %d", c.Shard.Rows)
	}
	if _, err := c.CommaRune(); err != nil {
		return err
	}

	return c.Logging.Validate()
}

// Validate checks the logging section on its own, so a logger can be built
// before flags have settled the rest of the configuration.
func (l LoggingConfig) Validate() error {
	validLevel := false
	for _, v := range ValidLogLevels {
		if l.Level == v {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", l.Level, ValidLogLevels)
	}
	if l.Encoding != "json" && l.Encoding != "console" {
		return fmt.Errorf("invalid logging.encoding: %s (valid: json, console)", l.Encoding)
	}
	return nil
}

// CommaRune returns the delimiter as a rune. An empty Comma means ','.
func (c *Config) CommaRune() (rune, error) {
	if c.CSV.Comma == "" {
		return ',', nil
	}
	if c.CSV.Comma == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(c.CSV.Comma)
	if size != len(c.CSV.Comma) || r == utf8.RuneError {
		return 0, fmt.Errorf("csv.comma must be a single character, got %q", c.CSV.Comma)
	}
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("csv.comma cannot be %q", r)
	}
	return r, nil
}
