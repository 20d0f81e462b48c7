package player

import (
	"fmt"
	"time"

	"github.com/osa030/tunedeck/internal/app/playback"
)

// Row is one playlist entry as the view renders it.
type Row struct {
	Index      int
	Name       string
	Subtitle   string
	Liked      bool
	Active     bool // Bound to the playback handle
	Playing    bool // Active and advancing
	Unplayable bool
}

// View is everything needed to render the player.
type View struct {
	Rows            []Row
	Liked           []int // Playlist indexes of liked tracks
	State           playback.State
	ActiveIndex     int // -1 when idle
	ScrubberEnabled bool
	CurrentTime     time.Duration
	Duration        time.Duration
	Status          string // Last rejection or load failure message
}

// IsPlaying reports whether the active track is advancing.
func (v View) IsPlaying() bool {
	return v.State == playback.StatePlaying
}

// LikedRows returns the rows of liked tracks in playlist order.
func (v View) LikedRows() []Row {
	rows := make([]Row, 0, len(v.Liked))
	for _, i := range v.Liked {
		if i >= 0 && i < len(v.Rows) {
			rows = append(rows, v.Rows[i])
		}
	}
	return rows
}

// Readout renders "elapsed / total seconds" with whole-second truncation.
func (v View) Readout() string {
	return Readout(v.CurrentTime, v.Duration)
}

// Progress returns the position as a fraction in [0, 1].
func (v View) Progress() float64 {
	if v.Duration <= 0 {
		return 0
	}
	p := float64(v.CurrentTime) / float64(v.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Readout renders "elapsed / total seconds" with whole-second truncation.
func Readout(current, duration time.Duration) string {
	return fmt.Sprintf("%d / %d seconds", int64(current/time.Second), int64(duration/time.Second))
}
