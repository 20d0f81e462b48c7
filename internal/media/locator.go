package media

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ErrUnknownLocator is returned when resolving a locator that was never
// allocated or has already been released.
var ErrUnknownLocator = errors.New("unknown locator")

const locatorScheme = "media:"

// Locator is an opaque reference that lets a playback handle reach a file's bytes.
// It is only valid within the session that allocated it.
type Locator string

// IsZero reports whether the locator is empty.
func (l Locator) IsZero() bool {
	return l == ""
}

// String returns the string form of the locator.
func (l Locator) String() string {
	return string(l)
}

// Registry allocates and releases locators.
type Registry struct {
	mu      sync.RWMutex
	entries map[Locator]File
}

// NewRegistry creates an empty locator registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Locator]File),
	}
}

// Allocate returns a fresh locator bound to the file.
func (r *Registry) Allocate(f File) Locator {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc := Locator(locatorScheme + uuid.New().String())
	r.entries[loc] = f
	return loc
}

// Lookup returns the file behind a locator.
func (r *Registry) Lookup(loc Locator) (File, error) {
	if !strings.HasPrefix(string(loc), locatorScheme) {
		return File{}, errors.Wrapf(ErrUnknownLocator, "%q", loc)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.entries[loc]
	if !ok {
		return File{}, errors.Wrapf(ErrUnknownLocator, "%q", loc)
	}
	return f, nil
}

// Release invalidates a locator. Releasing an unknown locator is a no-op.
func (r *Registry) Release(loc Locator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, loc)
}

// Len returns the number of live locators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close releases every live locator.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[Locator]File)
}
