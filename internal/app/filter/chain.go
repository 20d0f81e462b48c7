package filter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/domain/track"
	"github.com/osa030/tunedeck/internal/media"
)

// Settings is the per-filter configuration passed to NewChainFromSettings.
type Settings struct {
	Enabled  bool
	Settings map[string]any
}

// TrackSource lists the tracks already in the playlist.
type TrackSource interface {
	Tracks() []track.Track
}

// DurationProbe returns the playing time of a file.
type DurationProbe func(ctx context.Context, f media.File) (time.Duration, error)

// Deps are the runtime dependencies some filters need.
// Filters left unbound accept every file.
type Deps struct {
	Tracks TrackSource
	Probe  DurationProbe
}

// binder is implemented by filters that need Deps.
type binder interface {
	Bind(deps Deps)
}

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// NewChainFromSettings builds a chain from configuration.
// The audio content type filter is always first; other registered filters
// are added in name order when enabled.
func NewChainFromSettings(settings map[string]Settings) (*Chain, error) {
	for name := range settings {
		if _, ok := registry[name]; !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}
	}

	c := NewChain()

	audio := NewAudioContentTypeFilter()
	if err := audio.ValidateConfig(settings[AudioContentTypeFilterName].Settings); err != nil {
		return nil, errors.Wrapf(err, "invalid settings for %s", AudioContentTypeFilterName)
	}
	c.Add(audio)

	for _, name := range Names() {
		if name == AudioContentTypeFilterName {
			continue
		}
		s, ok := settings[name]
		if !ok || !s.Enabled {
			continue
		}
		f := registry[name]()
		if err := f.ValidateConfig(s.Settings); err != nil {
			return nil, errors.Wrapf(err, "invalid settings for %s", name)
		}
		zlog.Debug().Msgf("filter: enabled %s", name)
		c.Add(f)
	}

	return c, nil
}

// Bind hands the runtime dependencies to every filter that needs them.
func (c *Chain) Bind(deps Deps) {
	for _, f := range c.filters {
		if b, ok := f.(binder); ok {
			b.Bind(deps)
		}
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the file.
func (c *Chain) Execute(ctx context.Context, f media.File) Result {
	for _, flt := range c.filters {
		result := flt.Check(ctx, f)
		if !result.Accepted {
			result.Filter = flt.Name()
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
