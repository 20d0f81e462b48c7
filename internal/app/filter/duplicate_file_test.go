package filter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tunedeck/internal/domain/track"
	"github.com/osa030/tunedeck/internal/media"
)

type staticTracks []track.Track

func (s staticTracks) Tracks() []track.Track { return s }

func TestDuplicateFileFilter_SamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	f := NewDuplicateFileFilter()
	f.Bind(Deps{Tracks: staticTracks{{Source: path, Name: "song.wav"}}})

	result := f.Check(context.Background(), media.File{Name: "song.wav", Path: path})
	assert.False(t, result.Accepted)
	assert.Equal(t, CodeDuplicateFile, result.Code)

	// The same file reached through a relative path.
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, path)
	require.NoError(t, err)
	result = f.Check(context.Background(), media.File{Name: "song.wav", Path: rel})
	assert.False(t, result.Accepted)

	other := filepath.Join(dir, "other.wav")
	result = f.Check(context.Background(), media.File{Name: "other.wav", Path: other})
	assert.True(t, result.Accepted)
}

func TestDuplicateFileFilter_Unbound(t *testing.T) {
	f := NewDuplicateFileFilter()
	assert.True(t, f.Check(context.Background(), media.File{Path: "/a.mp3"}).Accepted)

	f.Bind(Deps{Tracks: staticTracks{}})
	assert.True(t, f.Check(context.Background(), media.File{Path: "/a.mp3"}).Accepted)
}

func TestIsRemaster(t *testing.T) {
	tests := []struct {
		name string
		a    media.Tags
		b    media.Tags
		want bool
	}{
		{
			name: "year remaster",
			a:    media.Tags{Title: "Bohemian Rhapsody", Artist: "Queen"},
			b:    media.Tags{Title: "Bohemian Rhapsody - 2011 Remaster", Artist: "Queen"},
			want: true,
		},
		{
			name: "parenthesized remaster",
			a:    media.Tags{Title: "Imagine (Remastered 2010)", Artist: "John Lennon"},
			b:    media.Tags{Title: "Imagine", Artist: "john lennon"},
			want: true,
		},
		{
			name: "radio edit",
			a:    media.Tags{Title: "Song (Radio Edit)", Artist: "Band"},
			b:    media.Tags{Title: "Song", Artist: "Band"},
			want: true,
		},
		{
			name: "cover by another artist",
			a:    media.Tags{Title: "Hallelujah", Artist: "Leonard Cohen"},
			b:    media.Tags{Title: "Hallelujah", Artist: "Jeff Buckley"},
			want: false,
		},
		{
			name: "different songs",
			a:    media.Tags{Title: "Yesterday", Artist: "The Beatles"},
			b:    media.Tags{Title: "Let It Be", Artist: "The Beatles"},
			want: false,
		},
		{
			name: "untagged track",
			a:    media.Tags{},
			b:    media.Tags{Title: "Song", Artist: "Band"},
			want: false,
		},
		{
			name: "title containing live is kept",
			a:    media.Tags{Title: "Alive", Artist: "Band"},
			b:    media.Tags{Title: "A", Artist: "Band"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRemaster(tt.a, tt.b))
		})
	}
}

func TestChain_Bind(t *testing.T) {
	c, err := NewChainFromSettings(map[string]Settings{
		DuplicateFileFilterName: {Enabled: true},
		DurationLimitFilterName: {Enabled: true, Settings: map[string]any{"max_minutes": 1}},
	})
	require.NoError(t, err)

	file := media.File{Name: "long.mp3", Path: "/music/long.mp3", ContentType: "audio/mpeg"}
	assert.True(t, c.Execute(context.Background(), file).Accepted, "unbound filters accept")

	c.Bind(Deps{
		Tracks: staticTracks{},
		Probe:  fixedProbe(90_000_000_000, nil),
	})
	result := c.Execute(context.Background(), file)
	assert.False(t, result.Accepted)
	assert.Equal(t, CodeDurationLimit, result.Code)
	assert.Equal(t, DurationLimitFilterName, result.Filter)
}
