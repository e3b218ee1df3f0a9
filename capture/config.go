package capture

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/codesnap/theme"
)

// Config is the top-level configuration, loaded from YAML.
type Config struct {
	Theme           string        `yaml:"theme"`
	ShowLineNumbers *bool         `yaml:"show_line_numbers"`
	WindowControls  *bool         `yaml:"window_controls"`
	Shadow          *bool         `yaml:"shadow"`
	OutputDir       string        `yaml:"output_dir"`
	HistoryDB       string        `yaml:"history_db"`
	Browser         BrowserConfig `yaml:"browser"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	// Remote connects to an existing Chrome DevTools endpoint instead of
	// launching one.
	Remote string `yaml:"remote"`
}

// Options is the resolved per-capture presentation settings.
type Options struct {
	Theme           string
	ShowLineNumbers bool
	WindowControls  bool
	Shadow          bool
}

// LoadFile reads a YAML configuration file. An empty path yields the
// defaults.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Theme == "" {
		c.Theme = theme.DefaultName
	}
	// Presentation toggles default to on; only an explicit false disables.
	on := true
	if c.ShowLineNumbers == nil {
		c.ShowLineNumbers = &on
	}
	if c.WindowControls == nil {
		c.WindowControls = &on
	}
	if c.Shadow == nil {
		c.Shadow = &on
	}
}

// Options snapshots the presentation settings.
func (c *Config) Options() Options {
	return Options{
		Theme:           c.Theme,
		ShowLineNumbers: *c.ShowLineNumbers,
		WindowControls:  *c.WindowControls,
		Shadow:          *c.Shadow,
	}
}
