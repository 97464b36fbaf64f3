// Package config loads the CLI configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"dario.cat/mergo"
	"go.alis.build/alog"
	"gopkg.in/yaml.v3"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// Config holds settings shared by every command.
type Config struct {
	// Rows and Cols bound new sheets.
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
	// DataDir is where sheet documents are stored.
	DataDir string `yaml:"data_dir"`
	// LogLevel is one of debug, info, warning or error.
	LogLevel string `yaml:"log_level"`
	// SheetName names sheets created without an explicit name.
	SheetName string `yaml:"sheet_name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rows:      spreadsheet.DefaultRows,
		Cols:      spreadsheet.DefaultCols,
		DataDir:   ".sheets",
		LogLevel:  "info",
		SheetName: "Sheet1",
	}
}

// Load reads the YAML file at path and fills every unset field from
// Default. an empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("merge config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative bounds and unknown log levels.
func (c Config) Validate() error {
	if c.Rows < 0 || c.Cols < 0 {
		return fmt.Errorf("invalid config: bounds must not be negative (rows=%d, cols=%d)", c.Rows, c.Cols)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to its logger level.
func ParseLevel(name string) (alog.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return alog.LevelDebug, nil
	case "", "info":
		return alog.LevelInfo, nil
	case "warn", "warning":
		return alog.LevelWarning, nil
	case "error":
		return alog.LevelError, nil
	}
	return alog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// ApplyLogLevel sets the process-wide log level.
func (c Config) ApplyLogLevel() error {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	alog.SetLevel(level)
	return nil
}
