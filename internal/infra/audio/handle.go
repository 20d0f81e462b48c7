// Package audio provides a playback.Handle that outputs sound through the
// system speaker using beep.
package audio

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/app/playback"
	"github.com/osa030/tunedeck/internal/media"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotLoaded         = errors.New("no media loaded")
)

// Config represents audio output configuration.
type Config struct {
	SampleRate       int           // Speaker sample rate in Hz
	Buffer           time.Duration // Speaker buffer length
	ResampleQuality  int           // beep resampling quality (1-6)
	PositionInterval time.Duration // Interval of position notifications while playing
}

// Resolver maps locators to files.
type Resolver interface {
	Lookup(loc media.Locator) (media.File, error)
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// decoders maps base content types to decoders.
var decoders = map[string]decodeFunc{
	"audio/mpeg":   func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	"audio/mp3":    func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	"audio/wav":    func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	"audio/x-wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	"audio/wave":   func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	"audio/flac":   func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	"audio/x-flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	"audio/ogg":    func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	"audio/vorbis": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

// Supported reports whether the content type can be decoded.
func Supported(contentType string) bool {
	_, ok := decoders[media.BaseType(contentType)]
	return ok
}

// Probe decodes the file header and returns its playing time.
func Probe(ctx context.Context, file media.File) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stream, format, err := openStream(file)
	if err != nil {
		return 0, err
	}
	defer stream.Close()
	return format.SampleRate.D(stream.Len()), nil
}

func openStream(file media.File) (beep.StreamSeekCloser, beep.Format, error) {
	decode, ok := decoders[media.BaseType(file.ContentType)]
	if !ok {
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "%s (%s)", file.Name, file.ContentType)
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrapf(err, "failed to open %s", file.Name)
	}
	stream, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "failed to decode %s", file.Name)
	}
	return stream, format, nil
}

// Handle drives the process-wide beep speaker.
// Only one Handle should exist per process.
type Handle struct {
	mu sync.Mutex

	config   Config
	resolver Resolver
	rate     beep.SampleRate

	speakerOnce sync.Once
	speakerErr  error

	// Loaded media
	loc    media.Locator
	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	ended  atomic.Bool

	notifications chan playback.Notification

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a speaker handle. The speaker is initialized on the first Load.
func New(resolver Resolver, config Config) *Handle {
	if config.SampleRate <= 0 {
		config.SampleRate = 44100
	}
	if config.Buffer <= 0 {
		config.Buffer = 100 * time.Millisecond
	}
	if config.ResampleQuality <= 0 {
		config.ResampleQuality = 4
	}
	if config.PositionInterval <= 0 {
		config.PositionInterval = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		config:        config,
		resolver:      resolver,
		rate:          beep.SampleRate(config.SampleRate),
		notifications: make(chan playback.Notification, 16),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	go h.reportPosition()

	return h
}

// Notifications returns the notification channel.
func (h *Handle) Notifications() <-chan playback.Notification {
	return h.notifications
}

// Load decodes the media behind the locator and queues it paused.
// Anything previously loaded is stopped and closed.
func (h *Handle) Load(ctx context.Context, loc media.Locator) error {
	file, err := h.resolver.Lookup(loc)
	if err != nil {
		return err
	}

	if _, ok := decoders[media.BaseType(file.ContentType)]; !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "%s (%s)", file.Name, file.ContentType)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	stream, format, err := openStream(file)
	if err != nil {
		return err
	}

	if err := h.initSpeaker(); err != nil {
		_ = stream.Close()
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	speaker.Clear()
	h.closeStreamLocked()

	h.loc = loc
	h.stream = stream
	h.format = format
	h.armLocked()

	duration := format.SampleRate.D(stream.Len())
	zlog.Debug().Msgf("audio: loaded %s: rate=%d channels=%d duration=%v", file.Name, format.SampleRate, format.NumChannels, duration)

	h.notify(playback.Notification{
		Kind:     playback.NotifyMetadataReady,
		Locator:  loc,
		Duration: duration,
	})
	return nil
}

// armLocked builds the speaker pipeline for the loaded stream, paused.
func (h *Handle) armLocked() {
	loc := h.loc
	h.ended.Store(false)

	var s beep.Streamer = h.stream
	if h.format.SampleRate != h.rate {
		s = beep.Resample(h.config.ResampleQuality, h.format.SampleRate, h.rate, s)
	}
	// The callback runs on the speaker goroutine with the speaker locked.
	s = beep.Seq(s, beep.Callback(func() {
		h.ended.Store(true)
		h.notify(playback.Notification{Kind: playback.NotifyEnded, Locator: loc})
	}))

	h.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	speaker.Play(h.ctrl)
}

// Play resumes the loaded media.
func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream == nil {
		return ErrNotLoaded
	}
	if h.ended.Load() {
		// The finished pipeline was dropped by the mixer.
		speaker.Lock()
		err := h.stream.Seek(0)
		speaker.Unlock()
		if err != nil {
			return errors.Wrap(err, "failed to rewind")
		}
		h.armLocked()
	}

	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause pauses the loaded media.
func (h *Handle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctrl == nil {
		return ErrNotLoaded
	}
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

// Position returns the position of the loaded media.
func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *Handle) positionLocked() time.Duration {
	if h.stream == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return h.format.SampleRate.D(h.stream.Position())
}

// SetPosition seeks the loaded media, clamped to its length.
func (h *Handle) SetPosition(d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream == nil {
		return ErrNotLoaded
	}

	n := h.format.SampleRate.N(d)
	if n < 0 {
		n = 0
	}

	speaker.Lock()
	if length := h.stream.Len(); n > length {
		n = length
	}
	err := h.stream.Seek(n)
	speaker.Unlock()
	if err != nil {
		return errors.Wrapf(err, "failed to seek to %v", d)
	}

	// A finished pipeline is never playing; the new one stays paused until Play.
	if h.ended.Load() && n < h.stream.Len() {
		h.armLocked()
	}
	return nil
}

// Duration returns the length of the loaded media, 0 if none.
func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream == nil {
		return 0
	}
	return h.format.SampleRate.D(h.stream.Len())
}

// Close stops output and releases the loaded media.
func (h *Handle) Close() error {
	h.cancel()
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.speakerErr == nil && h.ctrl != nil {
		speaker.Clear()
	}
	return h.closeStreamLocked()
}

func (h *Handle) closeStreamLocked() error {
	if h.stream == nil {
		return nil
	}
	err := h.stream.Close()
	h.stream = nil
	h.ctrl = nil
	h.loc = ""
	if err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "failed to close stream")
	}
	return nil
}

func (h *Handle) initSpeaker() error {
	h.speakerOnce.Do(func() {
		bufferSize := h.rate.N(h.config.Buffer)
		if err := speaker.Init(h.rate, bufferSize); err != nil {
			h.speakerErr = errors.Wrap(err, "failed to initialize speaker")
			return
		}
		zlog.Info().Msgf("audio: speaker initialized: rate=%d buffer=%v", h.rate, h.config.Buffer)
	})
	return h.speakerErr
}

// reportPosition emits position notifications while media is playing.
func (h *Handle) reportPosition() {
	defer close(h.done)

	ticker := time.NewTicker(h.config.PositionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			if h.ctrl == nil || h.ended.Load() {
				h.mu.Unlock()
				continue
			}
			speaker.Lock()
			paused := h.ctrl.Paused
			speaker.Unlock()
			if paused {
				h.mu.Unlock()
				continue
			}
			n := playback.Notification{
				Kind:     playback.NotifyPositionAdvanced,
				Locator:  h.loc,
				Position: h.positionLocked(),
			}
			h.mu.Unlock()
			h.notify(n)
		}
	}
}

// notify sends without blocking; position updates are dropped under pressure.
func (h *Handle) notify(n playback.Notification) {
	select {
	case h.notifications <- n:
	default:
		zlog.Debug().Msgf("audio: notification channel full, dropping %s", n.Kind)
	}
}
