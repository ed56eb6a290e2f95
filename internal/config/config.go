// Package config loads settings for the ndstool and ndsview commands.
//
// Configuration comes from at most one file, named by the --config flag or
// the NDSTOOL_CONFIG environment variable. Without either, the defaults
// are used. Files ending in .yaml or .yml are YAML; .json and .jsonc are
// JSON, with comments and trailing commas allowed. Command-line flags
// override file values.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "NDSTOOL_CONFIG"

// Config is the configuration shared by the commands.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Dump    DumpConfig    `yaml:"dump" json:"dump"`
	Extract ExtractConfig `yaml:"extract" json:"extract"`
	Mount   MountConfig   `yaml:"mount" json:"mount"`
	Viewer  ViewerConfig  `yaml:"viewer" json:"viewer"`
}

type DumpConfig struct {
	// Format is yaml, json or cbor.
	Format string `yaml:"format" json:"format"`
	// Output is the directory the header, fnt and fat documents are
	// written into. Empty writes one combined document to stdout.
	Output string `yaml:"output" json:"output"`
}

type ExtractConfig struct {
	// Output is the directory files are extracted into.
	Output    string `yaml:"output" json:"output"`
	Overwrite bool   `yaml:"overwrite" json:"overwrite"`
	Manifest  bool   `yaml:"manifest" json:"manifest"`
	// System also extracts the header, boot binaries and banner.
	System bool `yaml:"system" json:"system"`
}

type MountConfig struct {
	AllowOther bool `yaml:"allow_other" json:"allow_other"`
}

// ViewerConfig contains window settings for the banner viewer.
type ViewerConfig struct {
	Title string `yaml:"title" json:"title"` // window title
	Scale int    `yaml:"scale" json:"scale"` // integer upscaling factor
	// ScreenshotDir is where F12 writes PNGs. Empty means the working
	// directory.
	ScreenshotDir string `yaml:"screenshot_dir" json:"screenshot_dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Defaults()
	return c
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Dump.Format == "" {
		c.Dump.Format = "yaml"
	}
	if c.Extract.Output == "" {
		c.Extract.Output = "out"
	}
	if c.Viewer.Title == "" {
		c.Viewer.Title = "ndsview"
	}
	if c.Viewer.Scale <= 0 {
		c.Viewer.Scale = 3
	}
}

// Load loads the file named by path, or by NDSTOOL_CONFIG if path is
// empty. With neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	c := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config file extension %q", path, ext)
	}
	c.Defaults()

	if _, err := c.Level(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
