// Package config loads defaults for the textgrid command from a YAML or TOML
// file. Command-line flags override anything loaded here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/internal/logging"
)

// Config holds command defaults.
type Config struct {
	// Format is the output format for convert: long, short or binary.
	Format string `yaml:"format" toml:"format"`
	// Compression is the pack compression: none, zstd, s2, lz4 or xz.
	Compression string `yaml:"compression" toml:"compression"`
	// HistoryCapacity bounds the undo history of documents the command opens.
	HistoryCapacity int `yaml:"history_capacity" toml:"history_capacity"`
	// Store is the path of the SQLite archive.
	Store string `yaml:"store" toml:"store"`
	// Validate makes convert and pack refuse invalid documents.
	Validate bool `yaml:"validate" toml:"validate"`

	Log Log `yaml:"log" toml:"log"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Format:          "long",
		Compression:     "zstd",
		HistoryCapacity: grid.DefaultHistoryCapacity,
		Store:           "textgrid.db",
		Validate:        true,
		Log:             Log{Level: "info", Format: "text"},
	}
}

// ParseError reports a config file that could not be decoded.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}

	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads path over the defaults. The decoder is chosen by extension:
// .yaml/.yml or .toml. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Parse(path, data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Check(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes data into cfg, choosing the decoder by the extension of
// source. Fields absent from data keep their values.
func Parse(source string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			pe := &ParseError{Path: source, Message: err.Error(), Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				pe.Line, pe.Column = de.Position()
			}

			return pe
		}
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(source))
	}

	return nil
}

// Check verifies that every field names a known value.
func (c Config) Check() error {
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if _, err := c.CompressionType(); err != nil {
		return err
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be positive, got %d", c.HistoryCapacity)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}

	return nil
}

// OutputFormat parses Format.
func (c Config) OutputFormat() (format.Format, error) {
	return format.ParseFormat(c.Format)
}

// CompressionType parses Compression.
func (c Config) CompressionType() (format.CompressionType, error) {
	return format.ParseCompression(c.Compression)
}
