package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/media"
)

// SizeLimitFilterName is the config key of SizeLimitFilter.
const SizeLimitFilterName = "size_limit"

// SizeLimitConfig represents the configuration for SizeLimitFilter.
type SizeLimitConfig struct {
	MaxMegabytes float64 `yaml:"max_megabytes" mapstructure:"max_megabytes" default:"512" validate:"gt=0"`
}

// SizeLimitFilter rejects files larger than the configured size.
type SizeLimitFilter struct {
	config *SizeLimitConfig
}

// NewSizeLimitFilter creates a new size limit filter.
func NewSizeLimitFilter() *SizeLimitFilter {
	return &SizeLimitFilter{}
}

func (f *SizeLimitFilter) Name() string {
	return SizeLimitFilterName
}

func (f *SizeLimitFilter) Description() string {
	return "Rejects files larger than max_megabytes"
}

func (f *SizeLimitFilter) ReturnCodes() []string {
	return []string{CodeFileTooLarge}
}

func (f *SizeLimitFilter) ValidateConfig(settings map[string]any) error {
	var config SizeLimitConfig

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

	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	f.config = &config
	zlog.Debug().Msgf("size limit filter config: %+v", config)
	return nil
}

func (f *SizeLimitFilter) Check(ctx context.Context, file media.File) Result {
	if f.config == nil {
		return Accept()
	}
	limit := int64(f.config.MaxMegabytes * 1024 * 1024)
	if file.Size > limit {
		return Reject(CodeFileTooLarge)
	}
	return Accept()
}
