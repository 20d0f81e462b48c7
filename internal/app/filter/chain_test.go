package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tunedeck/internal/media"
)

type countingFilter struct {
	calls  int
	result Result
}

func (f *countingFilter) Name() string                        { return "counting" }
func (f *countingFilter) Description() string                 { return "counts calls" }
func (f *countingFilter) ReturnCodes() []string               { return []string{"counted"} }
func (f *countingFilter) ValidateConfig(map[string]any) error { return nil }
func (f *countingFilter) Check(context.Context, media.File) Result {
	f.calls++
	return f.result
}

func TestChain_StopsAtFirstRejection(t *testing.T) {
	c := NewChain()
	c.Add(NewAudioContentTypeFilter())
	after := &countingFilter{result: Accept()}
	c.Add(after)

	result := c.Execute(context.Background(), media.File{ContentType: "text/plain"})
	assert.False(t, result.Accepted)
	assert.Equal(t, CodeUnsupportedFileType, result.Code)
	assert.Equal(t, AudioContentTypeFilterName, result.Filter)
	assert.Equal(t, 0, after.calls)

	result = c.Execute(context.Background(), media.File{ContentType: "audio/mpeg"})
	assert.True(t, result.Accepted)
	assert.Equal(t, 1, after.calls)
}

func TestNewChainFromSettings(t *testing.T) {
	tests := []struct {
		name      string
		settings  map[string]Settings
		wantErr   bool
		wantNames []string
	}{
		{
			name:      "no settings keeps audio filter",
			settings:  nil,
			wantNames: []string{AudioContentTypeFilterName},
		},
		{
			name: "enabled filters are added in name order",
			settings: map[string]Settings{
				SizeLimitFilterName: {Enabled: true, Settings: map[string]any{"max_megabytes": 10}},
				EmptyFileFilterName: {Enabled: true},
			},
			wantNames: []string{AudioContentTypeFilterName, EmptyFileFilterName, SizeLimitFilterName},
		},
		{
			name: "disabled filters are skipped",
			settings: map[string]Settings{
				EmptyFileFilterName: {Enabled: false},
			},
			wantNames: []string{AudioContentTypeFilterName},
		},
		{
			name: "audio filter cannot be disabled",
			settings: map[string]Settings{
				AudioContentTypeFilterName: {Enabled: false},
			},
			wantNames: []string{AudioContentTypeFilterName},
		},
		{
			name: "unknown filter",
			settings: map[string]Settings{
				"duplicate_track": {Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "invalid settings",
			settings: map[string]Settings{
				SizeLimitFilterName: {Enabled: true, Settings: map[string]any{"max_megabytes": -5}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChainFromSettings(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			names := make([]string, 0)
			for _, f := range c.Filters() {
				names = append(names, f.Name())
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
