package media

import (
	"os"

	"github.com/dhowden/tag"
)

// Tags holds the embedded metadata of an audio file.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// IsEmpty reports whether no tag was found.
func (t Tags) IsEmpty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == ""
}

// ReadTags reads ID3/MP4/FLAC/Vorbis tags. Files without tags, or that
// cannot be read, yield empty Tags.
func ReadTags(path string) Tags {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}
	}
	return Tags{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}
}
