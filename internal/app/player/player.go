// Package player provides the player session that owns the playlist,
// the locator registry and the playback controller.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/app/filter"
	"github.com/osa030/tunedeck/internal/app/notification"
	"github.com/osa030/tunedeck/internal/app/playback"
	"github.com/osa030/tunedeck/internal/domain/playlist"
	"github.com/osa030/tunedeck/internal/domain/track"
	"github.com/osa030/tunedeck/internal/media"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileRejected        = errors.New("file rejected")
	ErrUnreadableFile      = errors.New("unreadable file")
	ErrTrackUnplayable     = errors.New("track is unplayable")
	ErrPlayerClosed        = errors.New("player is closed")
)

// Config holds player configuration.
type Config struct {
	Playback playback.Config
	Filters  map[string]filter.Settings
	ReadTags bool                 // Read embedded tags for display
	Probe    filter.DurationProbe // Measures files for the duration_limit filter
}

// Rejection describes a file that was not added.
type Rejection struct {
	Path string
	Name string
	Code string
	Err  error
}

// AddResult reports the outcome of adding files.
type AddResult struct {
	Added    []track.Track
	Rejected []Rejection
}

// Err combines the rejection errors, or returns nil when everything was added.
func (r AddResult) Err() error {
	var combined error
	for _, rej := range r.Rejected {
		combined = errors.CombineErrors(combined, rej.Err)
	}
	return combined
}

// Player is a single playlist player session.
type Player struct {
	mu sync.Mutex

	config Config

	// Components
	registry     *media.Registry
	filterChain  *filter.Chain
	playlist     *playlist.Playlist
	playback     *playback.Controller
	notification *notification.Manager[View]

	status string
	closed bool

	done chan struct{}
}

// New creates a player that takes ownership of the handle.
// The registry must be the one the handle resolves locators with.
func New(handle playback.Handle, registry *media.Registry, cfg Config) (*Player, error) {
	chain, err := filter.NewChainFromSettings(cfg.Filters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter chain")
	}

	p := &Player{
		config:       cfg,
		registry:     registry,
		filterChain:  chain,
		playlist:     playlist.New(),
		playback:     playback.NewController(handle, cfg.Playback),
		notification: notification.NewManager[View](),
		done:         make(chan struct{}),
	}

	chain.Bind(filter.Deps{Tracks: p, Probe: cfg.Probe})

	go p.handlePlaybackEvents()

	return p, nil
}

// AddFiles opens each path, filters it and appends accepted files in order.
// Rejections are reported in the result; they are not fatal.
func (p *Player) AddFiles(ctx context.Context, paths ...string) (AddResult, error) {
	files := make([]media.File, 0, len(paths))
	var rejected []Rejection

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return AddResult{Rejected: rejected}, err
		}

		f, err := media.Open(path)
		if err != nil {
			zlog.Warn().Msgf("player: skipping %s: %v", path, err)
			rejected = append(rejected, Rejection{
				Path: path,
				Code: "unreadable",
				Err:  errors.Mark(err, ErrUnreadableFile),
			})
			continue
		}
		files = append(files, f)
	}

	result, err := p.AddTracks(ctx, files...)
	result.Rejected = append(rejected, result.Rejected...)
	if len(rejected) > 0 {
		p.setStatus(describeRejections(result.Rejected))
		p.broadcast()
	}
	return result, err
}

// AddTracks filters already opened files and appends the accepted ones in order.
func (p *Player) AddTracks(ctx context.Context, files ...media.File) (AddResult, error) {
	var result AddResult

	batch := make([]track.Track, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		check := p.filterChain.Execute(ctx, f)
		if !check.Accepted {
			zlog.Warn().Msgf("player: rejected %s: code=%s content_type=%q", f.Name, check.Code, f.ContentType)
			result.Rejected = append(result.Rejected, Rejection{
				Path: f.Path,
				Name: f.Name,
				Code: check.Code,
				Err:  rejectionError(f, check.Code),
			})
			continue
		}

		t := track.Track{
			ID:          uuid.New().String(),
			Source:      f.Path,
			Locator:     p.registry.Allocate(f),
			Name:        f.Name,
			ContentType: f.ContentType,
			AddedAt:     time.Now(),
		}
		if p.config.ReadTags {
			t.Tags = media.ReadTags(f.Path)
		}
		batch = append(batch, t)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		for _, t := range batch {
			p.registry.Release(t.Locator)
		}
		return result, ErrPlayerClosed
	}
	p.playlist.Add(batch...)
	if len(result.Rejected) > 0 {
		p.status = describeRejections(result.Rejected)
	}
	p.mu.Unlock()

	result.Added = batch
	zlog.Info().Msgf("player: added %d tracks, rejected %d", len(batch), len(result.Rejected))
	p.broadcast()
	return result, nil
}

// ToggleLike flips the liked flag of the track at index.
func (p *Player) ToggleLike(index int) error {
	p.mu.Lock()
	err := p.playlist.ToggleLike(index)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.broadcast()
	return nil
}

// Select plays the track at index, or toggles pause/resume when it is
// already the active track.
func (p *Player) Select(ctx context.Context, index int) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPlayerClosed
	}

	t, err := p.playlist.At(index)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if t.Unplayable {
		p.mu.Unlock()
		return errors.Wrapf(ErrTrackUnplayable, "%s", t.Name)
	}

	err = p.playback.SelectOrToggle(ctx, t)
	switch {
	case err == nil:
		p.status = ""
	case errors.Is(err, playback.ErrMediaLoadFailure):
		p.playlist.MarkUnplayable(t.Locator)
		p.status = err.Error()
	}
	p.mu.Unlock()

	p.broadcast()
	return err
}

// Seek moves the active track to the given position.
func (p *Player) Seek(d time.Duration) error {
	if err := p.playback.Seek(d); err != nil {
		return err
	}
	p.broadcast()
	return nil
}

// SeekRelative moves the active track by delta from the current position.
func (p *Player) SeekRelative(delta time.Duration) error {
	snap := p.playback.Snapshot()
	if snap.Active == nil {
		return playback.ErrNoTrack
	}
	return p.Seek(snap.CurrentTime + delta)
}

// Remove removes the track at index and releases its locator.
// Removing the active track stops playback.
func (p *Player) Remove(index int) error {
	p.mu.Lock()
	removed, err := p.playlist.Remove(index)
	if err != nil {
		p.mu.Unlock()
		return err
	}

	var stopErr error
	if active, ok := p.playback.GetActiveTrack(); ok && active.Same(&removed) {
		stopErr = p.playback.Stop()
	}
	p.registry.Release(removed.Locator)
	p.mu.Unlock()

	zlog.Info().Msgf("player: removed %s", removed.Name)
	p.broadcast()
	return stopErr
}

// Tracks returns a copy of the playlist.
func (p *Player) Tracks() []track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playlist.Tracks()
}

// Snapshot returns the current view.
func (p *Player) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Player) snapshotLocked() View {
	snap := p.playback.Snapshot()

	v := View{
		Rows:        make([]Row, 0, p.playlist.Len()),
		Liked:       p.playlist.Liked(),
		State:       snap.State,
		ActiveIndex: -1,
		CurrentTime: snap.CurrentTime,
		Duration:    snap.Duration,
		Status:      p.status,
	}

	for i, t := range p.playlist.Tracks() {
		active := snap.Active.Same(&t)
		if active && v.ActiveIndex < 0 {
			v.ActiveIndex = i
		}
		v.Rows = append(v.Rows, Row{
			Index:      i,
			Name:       t.Title(),
			Subtitle:   t.Subtitle(),
			Liked:      t.Liked,
			Active:     active,
			Playing:    active && snap.IsPlaying(),
			Unplayable: t.Unplayable,
		})
	}
	v.ScrubberEnabled = v.ActiveIndex >= 0

	return v
}

// Subscribe returns a channel of views pushed on every state change.
func (p *Player) Subscribe() (string, <-chan notification.Envelope[View]) {
	return p.notification.Subscribe()
}

// Unsubscribe stops a subscription.
func (p *Player) Unsubscribe(id string) {
	p.notification.Unsubscribe(id)
}

// LiveLocators returns the number of locators not yet released.
func (p *Player) LiveLocators() int {
	return p.registry.Len()
}

// Close stops playback, closes the handle and releases every locator.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.playback.Close()
	<-p.done

	p.mu.Lock()
	released := p.playlist.Clear()
	p.mu.Unlock()
	for _, t := range released {
		p.registry.Release(t.Locator)
	}
	p.registry.Close()
	p.notification.Close()

	zlog.Info().Msgf("player: closed, released %d locators", len(released))
	return err
}

// handlePlaybackEvents consumes controller events until the controller closes.
func (p *Player) handlePlaybackEvents() {
	defer close(p.done)

	for event := range p.playback.Events() {
		p.handlePlaybackEvent(event)
	}
}

func (p *Player) handlePlaybackEvent(event playback.Event) {
	if event.Type != playback.EventPosition {
		zlog.Debug().Msgf("player: playback event: type=%s state=%s", event.Type, event.State)
	}

	if event.Type == playback.EventLoadFailed && event.Track != nil {
		p.mu.Lock()
		p.playlist.MarkUnplayable(event.Track.Locator)
		if event.Err != nil {
			p.status = event.Err.Error()
		}
		p.mu.Unlock()
	}

	p.broadcast()
}

func (p *Player) setStatus(status string) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
}

// broadcast pushes the current view. The sequence number is taken under the
// player lock so newer views always carry higher numbers.
func (p *Player) broadcast() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notification.Broadcast(p.snapshotLocked())
}

func rejectionError(f media.File, code string) error {
	err := errors.Newf("%s: %s (%s)", f.Name, code, f.ContentType)
	if code == filter.CodeUnsupportedFileType {
		return errors.Mark(err, ErrUnsupportedFileType)
	}
	return errors.Mark(err, ErrFileRejected)
}

func describeRejections(rejected []Rejection) string {
	switch len(rejected) {
	case 0:
		return ""
	case 1:
		name := rejected[0].Name
		if name == "" {
			name = rejected[0].Path
		}
		return fmt.Sprintf("skipped %s (%s)", name, rejected[0].Code)
	default:
		return fmt.Sprintf("skipped %d files", len(rejected))
	}
}
