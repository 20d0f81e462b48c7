package filter

import (
	"context"

	"github.com/osa030/tunedeck/internal/media"
)

// EmptyFileFilterName is the config key of EmptyFileFilter.
const EmptyFileFilterName = "empty_file"

// EmptyFileFilter rejects zero-byte files.
type EmptyFileFilter struct{}

// NewEmptyFileFilter creates a new empty file filter.
func NewEmptyFileFilter() *EmptyFileFilter {
	return &EmptyFileFilter{}
}

func (f *EmptyFileFilter) Name() string {
	return EmptyFileFilterName
}

func (f *EmptyFileFilter) Description() string {
	return "Rejects zero-byte files"
}

func (f *EmptyFileFilter) ReturnCodes() []string {
	return []string{CodeEmptyFile}
}

func (f *EmptyFileFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *EmptyFileFilter) Check(ctx context.Context, file media.File) Result {
	if file.Size == 0 {
		return Reject(CodeEmptyFile)
	}
	return Accept()
}
