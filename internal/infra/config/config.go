// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/tunedeck/internal/app/filter"
)

// Config represents the application configuration.
type Config struct {
	Log      LogConfig               `yaml:"log"`
	Playback PlaybackConfig          `yaml:"playback"`
	Audio    AudioConfig             `yaml:"audio"`
	Library  LibraryConfig           `yaml:"library"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	UI       UIConfig                `yaml:"ui"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	File  string `yaml:"file"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	PositionIntervalMs int `yaml:"position_interval_ms" default:"250" validate:"gte=50,lte=5000"`
	SeekStepSec        int `yaml:"seek_step_sec" default:"5" validate:"gte=1,lte=60"`
}

// AudioConfig represents audio output configuration.
type AudioConfig struct {
	SampleRate      int `yaml:"sample_rate" default:"44100" validate:"oneof=22050 32000 44100 48000 88200 96000"`
	BufferMs        int `yaml:"buffer_ms" default:"100" validate:"gte=10,lte=1000"`
	ResampleQuality int `yaml:"resample_quality" default:"4" validate:"gte=1,lte=6"`
}

// LibraryConfig represents file intake configuration.
type LibraryConfig struct {
	SkipTags   bool   `yaml:"skip_tags"`
	StartDir   string `yaml:"start_dir"`
	ShowHidden bool   `yaml:"show_hidden"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// UIConfig represents terminal UI configuration.
type UIConfig struct {
	Title string `yaml:"title" default:"Playlist Player"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	return &cfg
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the file if it exists, otherwise returns defaults
// with environment overrides applied.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		var cfg Config
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return Load(path)
}

func (c *Config) finish() error {
	// Override with environment variables
	if err := c.overrideFromEnv(); err != nil {
		return err
	}

	// Set defaults using creasty/defaults
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("TUNEDECK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TUNEDECK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("TUNEDECK_SEEK_STEP_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid TUNEDECK_SEEK_STEP_SEC %q", v)
		}
		c.Playback.SeekStepSec = n
	}
	if v := os.Getenv("TUNEDECK_START_DIR"); v != "" {
		c.Library.StartDir = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	for name := range c.Filters {
		if _, ok := filter.GetRegistered()[name]; !ok {
			return errors.Newf("unknown filter %q (available: %v)", name, filter.Names())
		}
	}
	return nil
}

// PositionInterval returns the position notification interval.
func (c *Config) PositionInterval() time.Duration {
	return time.Duration(c.Playback.PositionIntervalMs) * time.Millisecond
}

// SeekStep returns the scrubber step.
func (c *Config) SeekStep() time.Duration {
	return time.Duration(c.Playback.SeekStepSec) * time.Second
}

// AudioBuffer returns the speaker buffer length.
func (c *Config) AudioBuffer() time.Duration {
	return time.Duration(c.Audio.BufferMs) * time.Millisecond
}

// FilterSettings converts the filter configuration for the filter chain.
func (c *Config) FilterSettings() map[string]filter.Settings {
	settings := make(map[string]filter.Settings, len(c.Filters))
	for name, f := range c.Filters {
		settings[name] = filter.Settings{Enabled: f.Enabled, Settings: f.Settings}
	}
	return settings
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}
