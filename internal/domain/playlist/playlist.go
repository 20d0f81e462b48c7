// Package playlist provides the Playlist domain entity.
package playlist

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/tunedeck/internal/domain/track"
	"github.com/osa030/tunedeck/internal/media"
)

// ErrIndexOutOfRange is returned when an index does not address a track.
var ErrIndexOutOfRange = errors.New("index out of range")

// Playlist holds the ordered list of loaded tracks.
// It is not safe for concurrent use; the player serializes access.
type Playlist struct {
	tracks []track.Track
}

// New creates an empty playlist.
func New() *Playlist {
	return &Playlist{tracks: make([]track.Track, 0)}
}

// Add appends tracks in the given order. Liked is always reset to false.
func (p *Playlist) Add(tracks ...track.Track) {
	for _, t := range tracks {
		t.Liked = false
		p.tracks = append(p.tracks, t)
	}
}

// ToggleLike flips the liked flag of the track at index.
func (p *Playlist) ToggleLike(index int) error {
	if err := p.checkIndex(index); err != nil {
		return err
	}
	p.tracks[index].Liked = !p.tracks[index].Liked
	return nil
}

// Remove removes the track at index and returns it.
func (p *Playlist) Remove(index int) (track.Track, error) {
	if err := p.checkIndex(index); err != nil {
		return track.Track{}, err
	}
	removed := p.tracks[index]
	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)
	return removed, nil
}

// At returns a copy of the track at index.
func (p *Playlist) At(index int) (track.Track, error) {
	if err := p.checkIndex(index); err != nil {
		return track.Track{}, err
	}
	return p.tracks[index], nil
}

// IndexOf returns the index of the first track with the locator, or -1.
func (p *Playlist) IndexOf(loc media.Locator) int {
	for i := range p.tracks {
		if p.tracks[i].Locator == loc {
			return i
		}
	}
	return -1
}

// MarkUnplayable flags the track with the locator as unplayable.
// Returns false if no track has the locator.
func (p *Playlist) MarkUnplayable(loc media.Locator) bool {
	i := p.IndexOf(loc)
	if i < 0 {
		return false
	}
	p.tracks[i].Unplayable = true
	return true
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []track.Track {
	result := make([]track.Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Liked returns the indexes of liked tracks.
func (p *Playlist) Liked() []int {
	indexes := make([]int, 0)
	for i, t := range p.tracks {
		if t.Liked {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// Clear removes every track and returns them.
func (p *Playlist) Clear() []track.Track {
	removed := p.tracks
	p.tracks = make([]track.Track, 0)
	return removed
}

func (p *Playlist) checkIndex(index int) error {
	if index < 0 || index >= len(p.tracks) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", index, len(p.tracks))
	}
	return nil
}
