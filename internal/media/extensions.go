package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// AudioExtensions maps file extensions to whether they are offered by the
// file picker. Acceptance is still decided by the sniffed content type.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".m4a":  true,
	".aac":  true,
	".opus": true,
	".aiff": true,
	".aif":  true,
}

// AudioExtensionList returns AudioExtensions sorted.
func AudioExtensionList() []string {
	exts := make([]string, 0, len(AudioExtensions))
	for ext, ok := range AudioExtensions {
		if ok {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// HasAudioExtension reports whether the path has an audio file extension.
func HasAudioExtension(path string) bool {
	return AudioExtensions[strings.ToLower(filepath.Ext(path))]
}

// ExpandPaths replaces each directory with the audio-named files directly
// inside it, sorted by name. Other paths are kept as given, so unreadable or
// non-audio files still reach the filters and get reported.
func ExpandPaths(paths []string) ([]string, error) {
	expanded := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			expanded = append(expanded, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read directory %s", path)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && HasAudioExtension(e.Name()) {
				expanded = append(expanded, filepath.Join(path, e.Name()))
			}
		}
	}
	return expanded, nil
}
