package playback

import (
	"context"
	"time"

	"github.com/osa030/tunedeck/internal/media"
)

// Handle is the single native audio output the controller drives.
// Implementations must not block when sending on the notification channel.
type Handle interface {
	// Load points the handle at the locator. Playback does not start.
	Load(ctx context.Context, loc media.Locator) error
	Play() error
	Pause() error
	Position() time.Duration
	SetPosition(d time.Duration) error
	// Duration returns 0 until the metadata of the loaded media is known.
	Duration() time.Duration
	Notifications() <-chan Notification
	Close() error
}

// NotificationKind identifies an asynchronous signal from the handle.
type NotificationKind int

const (
	NotifyPositionAdvanced NotificationKind = iota // Periodic while playing
	NotifyMetadataReady                            // Once per load
	NotifyEnded                                    // Media reached its end
	NotifyLoadFailed                               // Media could not be decoded after Load returned
)

// String returns the string representation of the notification kind.
func (k NotificationKind) String() string {
	switch k {
	case NotifyPositionAdvanced:
		return "position_advanced"
	case NotifyMetadataReady:
		return "metadata_ready"
	case NotifyEnded:
		return "ended"
	case NotifyLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// Notification is an asynchronous signal from the handle.
type Notification struct {
	Kind     NotificationKind
	Locator  media.Locator // Media the notification refers to
	Position time.Duration
	Duration time.Duration
	Err      error
}
