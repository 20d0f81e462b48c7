// Package track provides the Track domain entity.
package track

import (
	"time"

	"github.com/osa030/tunedeck/internal/media"
)

// Track represents one audio file loaded into the playlist.
type Track struct {
	ID          string        // Track UUID
	Source      string        // Path of the originally selected file
	Locator     media.Locator // Session-scoped playable locator
	Name        string        // Display name
	ContentType string        // Detected MIME type
	Tags        media.Tags    // Embedded metadata (may be empty)
	Liked       bool          // Favorite flag
	Unplayable  bool          // Set after a failed load
	AddedAt     time.Time     // Time when added to the playlist
}

// Title returns the tag title when present, otherwise the display name.
func (t *Track) Title() string {
	if t.Tags.Title != "" {
		return t.Tags.Title
	}
	return t.Name
}

// Subtitle returns "artist • album" from tags, or an empty string.
func (t *Track) Subtitle() string {
	switch {
	case t.Tags.Artist != "" && t.Tags.Album != "":
		return t.Tags.Artist + " • " + t.Tags.Album
	case t.Tags.Artist != "":
		return t.Tags.Artist
	default:
		return t.Tags.Album
	}
}

// Same reports whether two tracks share the same playable locator.
func (t *Track) Same(other *Track) bool {
	if t == nil || other == nil {
		return false
	}
	return t.Locator == other.Locator
}
