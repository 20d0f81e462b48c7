package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 250, cfg.Playback.PositionIntervalMs)
	assert.Equal(t, 5, cfg.Playback.SeekStepSec)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 100, cfg.Audio.BufferMs)
	assert.Equal(t, 4, cfg.Audio.ResampleQuality)
	assert.Equal(t, "Playlist Player", cfg.UI.Title)
	assert.False(t, cfg.Library.SkipTags)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "position interval too small",
			mutate:  func(c *Config) { c.Playback.PositionIntervalMs = 10 },
			wantErr: true,
			errMsg:  "PositionIntervalMs",
		},
		{
			name:    "seek step too large",
			mutate:  func(c *Config) { c.Playback.SeekStepSec = 120 },
			wantErr: true,
			errMsg:  "SeekStepSec",
		},
		{
			name:    "unsupported sample rate",
			mutate:  func(c *Config) { c.Audio.SampleRate = 12345 },
			wantErr: true,
			errMsg:  "SampleRate",
		},
		{
			name:    "resample quality out of range",
			mutate:  func(c *Config) { c.Audio.ResampleQuality = 7 },
			wantErr: true,
			errMsg:  "ResampleQuality",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errMsg:  "Level",
		},
		{
			name: "known filter",
			mutate: func(c *Config) {
				c.Filters = map[string]FilterConfig{"size_limit": {Enabled: true}}
			},
			wantErr: false,
		},
		{
			name: "unknown filter",
			mutate: func(c *Config) {
				c.Filters = map[string]FilterConfig{"no_such_filter": {Enabled: true}}
			},
			wantErr: true,
			errMsg:  "no_such_filter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
playback:
  seek_step_sec: 10
audio:
  sample_rate: 48000
filters:
  size_limit:
    enabled: true
    settings:
      max_megabytes: 64
ui:
  title: Road Trip
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.SeekStep())
	assert.Equal(t, 250*time.Millisecond, cfg.PositionInterval())
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 100*time.Millisecond, cfg.AudioBuffer())
	assert.Equal(t, "Road Trip", cfg.UI.Title)

	assert.True(t, cfg.IsFilterEnabled("size_limit"))
	assert.False(t, cfg.IsFilterEnabled("empty_file"))

	settings := cfg.FilterSettings()
	require.Contains(t, settings, "size_limit")
	assert.True(t, settings["size_limit"].Enabled)
	assert.Equal(t, 64, settings["size_limit"].Settings["max_megabytes"])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "malformed yaml",
			body:   "playback: [",
			errMsg: "failed to parse config file",
		},
		{
			name:   "out of range",
			body:   "playback:\n  position_interval_ms: 1\n",
			errMsg: "config validation failed",
		},
		{
			name:   "unknown filter",
			body:   "filters:\n  bogus:\n    enabled: true\n",
			errMsg: "unknown filter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		cfg, err := LoadOrDefault(writeConfig(t, "ui:\n  title: Mine\n"))
		require.NoError(t, err)
		assert.Equal(t, "Mine", cfg.UI.Title)
	})
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TUNEDECK_LOG_LEVEL", "error")
	t.Setenv("TUNEDECK_SEEK_STEP_SEC", "15")
	t.Setenv("TUNEDECK_START_DIR", "/music")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\nplayback:\n  seek_step_sec: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.SeekStep())
	assert.Equal(t, "/music", cfg.Library.StartDir)
}

func TestLoad_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("TUNEDECK_SEEK_STEP_SEC", "soon")

	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUNEDECK_SEEK_STEP_SEC")
}
