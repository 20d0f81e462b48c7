package filter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/media"
)

// DurationLimitFilterName is the config key of DurationLimitFilter.
const DurationLimitFilterName = "duration_limit"

// DurationLimitConfig represents the configuration for DurationLimitFilter.
type DurationLimitConfig struct {
	MinSeconds float64 `yaml:"min_seconds" mapstructure:"min_seconds" validate:"gte=0"`
	MaxMinutes float64 `yaml:"max_minutes" mapstructure:"max_minutes" default:"60" validate:"gt=0"`
}

// DurationLimitFilter checks if a file's playing time is within allowed limits.
// Files whose length cannot be probed are accepted.
type DurationLimitFilter struct {
	config *DurationLimitConfig
	probe  DurationProbe
}

// NewDurationLimitFilter creates a new duration limit filter.
func NewDurationLimitFilter() *DurationLimitFilter {
	return &DurationLimitFilter{}
}

func (f *DurationLimitFilter) Name() string {
	return DurationLimitFilterName
}

func (f *DurationLimitFilter) Description() string {
	return "Checks if the playing time is within min_seconds and max_minutes"
}

func (f *DurationLimitFilter) ReturnCodes() []string {
	return []string{CodeDurationLimit}
}

func (f *DurationLimitFilter) ValidateConfig(settings map[string]any) error {
	var config DurationLimitConfig

	// Decode map[string]any to struct using mapstructure
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	// Set defaults
	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	// Validate using validator
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	if config.MaxMinutes > 0 && config.MinSeconds > config.MaxMinutes*60 {
		return errors.New("min_seconds cannot be greater than max_minutes")
	}
	f.config = &config
	zlog.Debug().Msgf("duration limit filter config: %+v", config)
	return nil
}

// Bind sets the probe used to measure files.
func (f *DurationLimitFilter) Bind(deps Deps) {
	f.probe = deps.Probe
}

func (f *DurationLimitFilter) Check(ctx context.Context, file media.File) Result {
	// If config or probe is not set, accept all files
	if f.config == nil || f.probe == nil {
		return Accept()
	}

	d, err := f.probe(ctx, file)
	if err != nil {
		zlog.Debug().Msgf("duration limit filter: cannot probe %s: %v", file.Name, err)
		return Accept()
	}

	if d < time.Duration(f.config.MinSeconds*float64(time.Second)) {
		return Reject(CodeDurationLimit)
	}
	if f.config.MaxMinutes > 0 && d > time.Duration(f.config.MaxMinutes*float64(time.Minute)) {
		return Reject(CodeDurationLimit)
	}
	return Accept()
}
