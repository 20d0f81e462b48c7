package playback

import (
	"time"

	"github.com/osa030/tunedeck/internal/domain/track"
)

// EventType represents a playback event type.
type EventType int

const (
	EventTrackLoaded  EventType = iota // A new track became active and started playing
	EventStateChanged                  // Playback state changed (pause/resume/stop)
	EventPosition                      // Position advanced or was seeked
	EventMetadata                      // Duration became known
	EventEnded                         // Active track played to completion
	EventLoadFailed                    // Active track could not be loaded
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "track_loaded"
	case EventStateChanged:
		return "state_changed"
	case EventPosition:
		return "position"
	case EventMetadata:
		return "metadata"
	case EventEnded:
		return "ended"
	case EventLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	Track    *track.Track  // Active track (nil after a failed load or stop)
	State    State         // Current playback state
	Position time.Duration // Current position
	Duration time.Duration // Duration of the active track, 0 if unknown
	Err      error         // Set for EventLoadFailed
}
