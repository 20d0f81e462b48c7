// Package media provides file intake and session-scoped playable locators.
package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"
)

// ErrNotRegularFile is returned by Open for directories and special files.
var ErrNotRegularFile = errors.New("not a regular file")

// File represents a file selected by the user.
type File struct {
	Name        string // Display name (base name of Path)
	Path        string // Source handle
	ContentType string // MIME type detected from the file contents
	Size        int64  // Size in bytes
}

// Open stats the path and detects its content type from the leading bytes.
func Open(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return File{}, errors.Wrapf(ErrNotRegularFile, "%s", path)
	}

	contentType := ""
	if info.Size() > 0 {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return File{}, errors.Wrapf(err, "failed to detect content type of %s", path)
		}
		contentType = mt.String()
	}

	return File{
		Name:        filepath.Base(path),
		Path:        path,
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// IsAudio reports whether the content type is an audio type.
func IsAudio(contentType string) bool {
	return strings.HasPrefix(contentType, "audio/")
}

// BaseType strips parameters from a content type ("audio/mpeg; x=y" -> "audio/mpeg").
func BaseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}
