package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/osa030/tunedeck/internal/domain/track"
)

// Errors
var (
	ErrNoTrack          = errors.New("no active track")
	ErrMediaLoadFailure = errors.New("media load failure")
	ErrClosed           = errors.New("controller closed")
)

// Config holds controller configuration.
type Config struct {
	PositionInterval time.Duration // Minimum interval between EventPosition emissions; 0 disables throttling
	EventBuffer      int           // Size of the event channel buffer
}

// Snapshot is a consistent view of the controller state.
type Snapshot struct {
	State       State
	Active      *track.Track // nil when idle
	CurrentTime time.Duration
	Duration    time.Duration
}

// IsPlaying reports whether the active track is advancing.
func (s Snapshot) IsPlaying() bool {
	return s.State == StatePlaying
}

// Controller binds a single Handle to the active track.
// It is the only component that mutates the handle's source, position and play state.
type Controller struct {
	mu sync.RWMutex

	handle Handle

	// Current track state
	active      *track.Track
	state       State
	currentTime time.Duration
	duration    time.Duration
	ended       bool

	// Configuration
	config  Config
	limiter *rate.Limiter

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a playback controller that owns the handle and
// starts consuming its notifications.
func NewController(handle Handle, config Config) *Controller {
	if config.EventBuffer <= 0 {
		config.EventBuffer = 32
	}

	limit := rate.Inf
	if config.PositionInterval > 0 {
		limit = rate.Every(config.PositionInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		handle:  handle,
		state:   StateIdle,
		config:  config,
		limiter: rate.NewLimiter(limit, 1),
		eventCh: make(chan Event, config.EventBuffer),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go c.watchHandle()

	return c
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// SelectOrToggle makes t the active track and starts it, or toggles
// pause/resume when t is already active. Identity is by locator.
func (c *Controller) SelectOrToggle(ctx context.Context, t track.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if c.active.Same(&t) {
		return c.toggleLocked()
	}
	return c.loadLocked(ctx, t)
}

func (c *Controller) toggleLocked() error {
	switch c.state {
	case StatePlaying:
		if err := c.handle.Pause(); err != nil {
			return errors.Wrap(err, "failed to pause")
		}
		c.state = StatePaused
	case StatePaused:
		// Resuming a finished track starts it over.
		if c.ended {
			if err := c.handle.SetPosition(0); err != nil {
				return errors.Wrap(err, "failed to rewind")
			}
			c.currentTime = 0
			c.ended = false
		}
		if err := c.handle.Play(); err != nil {
			return errors.Wrap(err, "failed to resume")
		}
		c.state = StatePlaying
	default:
		return ErrNoTrack
	}

	zlog.Debug().Msgf("playback: toggled: track=%s state=%s", c.active.Name, c.state)
	c.sendEventLocked(c.eventLocked(EventStateChanged))
	return nil
}

func (c *Controller) loadLocked(ctx context.Context, t track.Track) error {
	// The shared handle stops the previous track implicitly when it loads
	// the new one; pause first so nothing keeps advancing during the load.
	if c.active != nil && c.state == StatePlaying {
		if err := c.handle.Pause(); err != nil {
			zlog.Warn().Msgf("playback: failed to pause previous track: %v", err)
		}
	}

	next := t
	c.active = &next
	c.currentTime = 0
	c.duration = 0
	c.ended = false

	if err := c.handle.Load(ctx, t.Locator); err != nil {
		return c.failLocked(err)
	}
	if err := c.handle.SetPosition(0); err != nil {
		return c.failLocked(err)
	}
	c.duration = c.handle.Duration()
	if err := c.handle.Play(); err != nil {
		return c.failLocked(err)
	}
	c.state = StatePlaying

	zlog.Debug().Msgf("playback: loaded: track=%s locator=%s duration=%v", t.Name, t.Locator, c.duration)
	c.sendEventLocked(c.eventLocked(EventTrackLoaded))
	return nil
}

// failLocked resets to idle after a load failure and reports it.
func (c *Controller) failLocked(cause error) error {
	failed := c.active
	name := ""
	if failed != nil {
		name = failed.Name
	}
	err := errors.Mark(errors.Wrapf(cause, "failed to load %s", name), ErrMediaLoadFailure)

	zlog.Warn().Msgf("playback: %v", err)

	c.resetLocked()
	c.sendEventLocked(Event{
		Type:  EventLoadFailed,
		Track: failed,
		State: c.state,
		Err:   err,
	})
	return err
}

// Seek moves the position of the active track without changing play state.
// The position is clamped to [0, duration] once the duration is known.
func (c *Controller) Seek(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNoTrack
	}

	if d < 0 {
		d = 0
	}
	if c.duration > 0 && d > c.duration {
		d = c.duration
	}

	if err := c.handle.SetPosition(d); err != nil {
		return errors.Wrapf(err, "failed to seek to %v", d)
	}
	c.currentTime = d
	if c.duration == 0 || d < c.duration {
		c.ended = false
	}

	c.sendEventLocked(c.eventLocked(EventPosition))
	return nil
}

// Stop pauses the handle and clears the active track.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	if c.active == nil {
		return nil
	}

	var err error
	if c.state == StatePlaying {
		err = c.handle.Pause()
	}

	c.resetLocked()
	c.sendEventLocked(c.eventLocked(EventStateChanged))

	if err != nil {
		return errors.Wrap(err, "failed to pause")
	}
	return nil
}

func (c *Controller) resetLocked() {
	c.active = nil
	c.state = StateIdle
	c.currentTime = 0
	c.duration = 0
	c.ended = false
}

// GetState returns the current playback state.
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsPlaying reports whether the active track is advancing.
func (c *Controller) IsPlaying() bool {
	return c.GetState() == StatePlaying
}

// GetActiveTrack returns a copy of the active track.
func (c *Controller) GetActiveTrack() (*track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.active == nil {
		return nil, false
	}
	t := *c.active
	return &t, true
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		State:       c.state,
		CurrentTime: c.currentTime,
		Duration:    c.duration,
	}
	if c.active != nil {
		t := *c.active
		s.Active = &t
	}
	return s
}

// Close stops playback, releases the handle and closes the event channel.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	stopErr := c.stopLocked()
	c.closed = true
	close(c.eventCh)
	c.mu.Unlock()

	c.cancel()
	closeErr := c.handle.Close()
	<-c.done

	return errors.CombineErrors(stopErr, closeErr)
}

// watchHandle consumes handle notifications until the controller is closed.
func (c *Controller) watchHandle() {
	defer close(c.done)

	notifications := c.handle.Notifications()
	for {
		select {
		case <-c.ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			c.handleNotification(n)
		}
	}
}

func (c *Controller) handleNotification(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	// Drop signals from media that is no longer active.
	if c.active == nil || n.Locator != c.active.Locator {
		zlog.Debug().Msgf("playback: ignoring stale notification: kind=%s locator=%s", n.Kind, n.Locator)
		return
	}

	switch n.Kind {
	case NotifyPositionAdvanced:
		c.currentTime = n.Position
		if c.limiter.Allow() {
			c.sendEventLocked(c.eventLocked(EventPosition))
		}

	case NotifyMetadataReady:
		c.duration = n.Duration
		zlog.Debug().Msgf("playback: metadata ready: track=%s duration=%v", c.active.Name, c.duration)
		c.sendEventLocked(c.eventLocked(EventMetadata))

	case NotifyEnded:
		// Position stays at the end of the track.
		c.state = StatePaused
		c.ended = true
		switch {
		case n.Position > 0:
			c.currentTime = n.Position
		case c.duration > 0:
			c.currentTime = c.duration
		}
		zlog.Debug().Msgf("playback: track ended: track=%s position=%v", c.active.Name, c.currentTime)
		c.sendEventLocked(c.eventLocked(EventEnded))

	case NotifyLoadFailed:
		cause := n.Err
		if cause == nil {
			cause = errors.New("decoder reported failure")
		}
		_ = c.failLocked(cause)
	}
}

// eventLocked builds an event from the current state.
// Must be called with lock held.
func (c *Controller) eventLocked(t EventType) Event {
	e := Event{
		Type:     t,
		State:    c.state,
		Position: c.currentTime,
		Duration: c.duration,
	}
	if c.active != nil {
		at := *c.active
		e.Track = &at
	}
	return e
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
		// Successfully sent
	case <-c.ctx.Done():
		// Context cancelled, don't send
	default:
		zlog.Debug().Msgf("playback: event channel full, dropping %s", e.Type)
	}
}
