// Package playback provides the playback controller that owns the audio handle.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No active track
	StatePlaying              // Active track is playing
	StatePaused               // Active track is loaded but paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
