package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents scour configuration options
type Config struct {
	// Recurse descends into subdirectories
	Recurse bool `yaml:"recurse"`

	// IgnoreCase folds case when matching
	IgnoreCase bool `yaml:"ignore_case"`

	// FixedString treats the pattern as a literal string instead of a
	// regular expression
	FixedString bool `yaml:"fixed_string"`

	// Follow resolves symbolic links during the walk
	Follow bool `yaml:"follow"`

	// Readers is the number of concurrent file readers
	Readers int `yaml:"readers"`

	// Encoding is the input text encoding: empty for UTF-8, "auto" for
	// per-file detection, or an IANA encoding name
	Encoding string `yaml:"encoding"`

	// ExcludeDirs lists directory names skipped during the walk
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// NoColor disables styled output
	NoColor bool `yaml:"no_color"`

	// LogLevel sets the diagnostic verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for per-run log files; empty disables them
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Recurse:     true,
		IgnoreCase:  false,
		FixedString: false,
		Follow:      false,
		Readers:     8,
		Encoding:    "",
		ExcludeDirs: []string{".git"},
		NoColor:     false,
		LogLevel:    "warn",
		LogDir:      "",
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A default survives unless its key is present in the file, so an
	// explicit "recurse: false" is distinguishable from an absent key.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, exists := rawMap["recurse"]; exists {
		cfg.Recurse = fileCfg.Recurse
	}
	if _, exists := rawMap["ignore_case"]; exists {
		cfg.IgnoreCase = fileCfg.IgnoreCase
	}
	if _, exists := rawMap["fixed_string"]; exists {
		cfg.FixedString = fileCfg.FixedString
	}
	if _, exists := rawMap["follow"]; exists {
		cfg.Follow = fileCfg.Follow
	}
	if _, exists := rawMap["readers"]; exists {
		cfg.Readers = fileCfg.Readers
	}
	if _, exists := rawMap["encoding"]; exists {
		cfg.Encoding = fileCfg.Encoding
	}
	if _, exists := rawMap["exclude_dirs"]; exists {
		cfg.ExcludeDirs = fileCfg.ExcludeDirs
	}
	if _, exists := rawMap["no_color"]; exists {
		cfg.NoColor = fileCfg.NoColor
	}
	if _, exists := rawMap["log_level"]; exists {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if _, exists := rawMap["log_dir"]; exists {
		cfg.LogDir = fileCfg.LogDir
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .scour/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".scour", "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, which lets CLI flags
// take precedence over config file settings.
func (c *Config) MergeWithFlags(recurse, ignoreCase, fixedString, follow *bool, readers *int, encoding *string, excludeDirs *[]string, noColor *bool, logLevel, logDir *string) {
	if recurse != nil {
		c.Recurse = *recurse
	}
	if ignoreCase != nil {
		c.IgnoreCase = *ignoreCase
	}
	if fixedString != nil {
		c.FixedString = *fixedString
	}
	if follow != nil {
		c.Follow = *follow
	}
	if readers != nil {
		c.Readers = *readers
	}
	if encoding != nil {
		c.Encoding = *encoding
	}
	if excludeDirs != nil {
		c.ExcludeDirs = *excludeDirs
	}
	if noColor != nil {
		c.NoColor = *noColor
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.Readers < 1 {
		return fmt.Errorf("readers must be >= 1, got %d", c.Readers)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	return nil
}
