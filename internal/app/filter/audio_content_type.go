package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/tunedeck/internal/media"
)

// AudioContentTypeFilterName is the config key of AudioContentTypeFilter.
const AudioContentTypeFilterName = "audio_content_type"

// AudioContentTypeConfig represents the configuration for AudioContentTypeFilter.
type AudioContentTypeConfig struct {
	// ExtraTypes are accepted in addition to audio/*, e.g. "video/mp4" for m4a files
	// that sniff as video containers.
	ExtraTypes []string `yaml:"extra_types" mapstructure:"extra_types" validate:"dive,required,contains=/"`
}

// AudioContentTypeFilter accepts files whose content type begins with "audio/".
type AudioContentTypeFilter struct {
	extra map[string]bool
}

// NewAudioContentTypeFilter creates a filter with no extra types.
func NewAudioContentTypeFilter() *AudioContentTypeFilter {
	return &AudioContentTypeFilter{extra: make(map[string]bool)}
}

func (f *AudioContentTypeFilter) Name() string {
	return AudioContentTypeFilterName
}

func (f *AudioContentTypeFilter) Description() string {
	return "Accepts only files whose detected content type is audio/*"
}

func (f *AudioContentTypeFilter) ReturnCodes() []string {
	return []string{CodeUnsupportedFileType}
}

func (f *AudioContentTypeFilter) ValidateConfig(settings map[string]any) error {
	var config AudioContentTypeConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	f.extra = make(map[string]bool, len(config.ExtraTypes))
	for _, t := range config.ExtraTypes {
		f.extra[media.BaseType(t)] = true
	}
	return nil
}

func (f *AudioContentTypeFilter) Check(ctx context.Context, file media.File) Result {
	if media.IsAudio(file.ContentType) || f.extra[media.BaseType(file.ContentType)] {
		return Accept()
	}
	return Reject(CodeUnsupportedFileType)
}
