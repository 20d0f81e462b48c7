package filter

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/osa030/tunedeck/internal/media"
)

// DuplicateFileFilterName is the config key of DuplicateFileFilter.
const DuplicateFileFilterName = "duplicate_file"

// DuplicateFileFilter rejects files already in the playlist.
// Detects:
// - The same source path
// - Remasters (normalized tag title + same artist)
// Excludes:
// - Cover songs (same title but different artist)
type DuplicateFileFilter struct {
	tracks TrackSource
}

// NewDuplicateFileFilter creates a new duplicate file filter.
func NewDuplicateFileFilter() *DuplicateFileFilter {
	return &DuplicateFileFilter{}
}

func (f *DuplicateFileFilter) Name() string {
	return DuplicateFileFilterName
}

func (f *DuplicateFileFilter) Description() string {
	return "Rejects files already in the playlist, including remasters of a tagged song"
}

func (f *DuplicateFileFilter) ReturnCodes() []string {
	return []string{CodeDuplicateFile}
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateFileFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

// Bind sets the playlist the filter compares against.
func (f *DuplicateFileFilter) Bind(deps Deps) {
	f.tracks = deps.Tracks
}

func (f *DuplicateFileFilter) Check(ctx context.Context, file media.File) Result {
	if f.tracks == nil {
		return Accept()
	}
	existing := f.tracks.Tracks()
	if len(existing) == 0 {
		return Accept()
	}

	path := cleanPath(file.Path)
	for _, t := range existing {
		if cleanPath(t.Source) == path {
			return Reject(CodeDuplicateFile)
		}
	}

	tags := media.ReadTags(file.Path)
	if tags.Title == "" || tags.Artist == "" {
		return Accept()
	}
	for _, t := range existing {
		if isRemaster(t.Tags, tags) {
			return Reject(CodeDuplicateFile)
		}
	}
	return Accept()
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// isRemaster reports whether two tag sets describe the same song.
// Different artists mean a cover, which is allowed.
func isRemaster(a, b media.Tags) bool {
	if a.Title == "" || a.Artist == "" {
		return false
	}
	if normalizeTitle(a.Title) != normalizeTitle(b.Title) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.Artist), strings.TrimSpace(b.Artist))
}

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),              // "(Any Remaster text)"
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),              // "[Any Remaster text]"
	}
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`),        // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),           // "(Radio Edit)"
		regexp.MustCompile(`\s*\(live\)`),              // "(Live)"
		regexp.MustCompile(`\s*-\s*live$`),             // "- Live"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`),     // "- Radio Edit"
		regexp.MustCompile(`\s*-?\s*single\s+version`), // "- Single Version"
	}
	spaces = regexp.MustCompile(`\s+`)
)

// normalizeTitle removes remaster and version details from a song title.
func normalizeTitle(title string) string {
	normalized := strings.ToLower(title)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = spaces.ReplaceAllString(normalized, " ")
	return strings.TrimRight(normalized, " -")
}
