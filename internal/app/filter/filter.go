// Package filter provides the admission chain for files added to the playlist.
package filter

import (
	"context"
	"sort"

	"github.com/osa030/tunedeck/internal/media"
)

// Rejection codes.
const (
	CodeUnsupportedFileType = "unsupported_file_type"
	CodeEmptyFile           = "empty_file"
	CodeFileTooLarge        = "file_too_large"
	CodeDurationLimit       = "duration_limit_exceeded"
	CodeDuplicateFile       = "duplicate_file"
)

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "unsupported_file_type", "empty_file"
	Filter   string // Name of the rejecting filter
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for file admission filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// Check performs the filter check.
	Check(ctx context.Context, f media.File) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}

// Names returns the registered filter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(AudioContentTypeFilterName, func() Filter { return NewAudioContentTypeFilter() })
	Register(EmptyFileFilterName, func() Filter { return NewEmptyFileFilter() })
	Register(SizeLimitFilterName, func() Filter { return NewSizeLimitFilter() })
	Register(DurationLimitFilterName, func() Filter { return NewDurationLimitFilter() })
	Register(DuplicateFileFilterName, func() Filter { return NewDuplicateFileFilter() })
}
