package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wavHeader is enough of a RIFF/WAVE header for content sniffing.
var wavHeader = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x44\xac\x00\x00\x88\x58\x01\x00\x02\x00\x10\x00data\x00\x00\x00\x00")

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		data      []byte
		wantAudio bool
		wantSize  int64
	}{
		{
			name:      "wav file",
			file:      "song.wav",
			data:      wavHeader,
			wantAudio: true,
			wantSize:  int64(len(wavHeader)),
		},
		{
			name:      "mp3 with id3 header",
			file:      "song.mp3",
			data:      append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...),
			wantAudio: true,
			wantSize:  74,
		},
		{
			name:      "text file with audio extension",
			file:      "notes.mp3",
			data:      []byte("just some text"),
			wantAudio: false,
			wantSize:  14,
		},
		{
			name:      "empty file",
			file:      "empty.wav",
			data:      []byte{},
			wantAudio: false,
			wantSize:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.data)

			f, err := Open(path)
			require.NoError(t, err)
			assert.Equal(t, tt.file, f.Name)
			assert.Equal(t, path, f.Path)
			assert.Equal(t, tt.wantSize, f.Size)
			assert.Equal(t, tt.wantAudio, IsAudio(f.ContentType), "content type %q", f.ContentType)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)

	_, err = Open(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRegularFile))
}

func TestIsAudio(t *testing.T) {
	assert.True(t, IsAudio("audio/mpeg"))
	assert.True(t, IsAudio("audio/wav"))
	assert.False(t, IsAudio("video/mp4"))
	assert.False(t, IsAudio("text/plain; charset=utf-8"))
	assert.False(t, IsAudio(""))
}

func TestBaseType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", BaseType("audio/mpeg"))
	assert.Equal(t, "text/plain", BaseType("Text/Plain; charset=utf-8"))
	assert.Equal(t, "", BaseType(""))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	f := File{Name: "a.mp3", Path: "/music/a.mp3", ContentType: "audio/mpeg"}

	loc1 := r.Allocate(f)
	loc2 := r.Allocate(f)
	assert.NotEqual(t, loc1, loc2, "same file must get distinct locators")
	assert.False(t, loc1.IsZero())
	assert.Equal(t, 2, r.Len())

	got, err := r.Lookup(loc1)
	require.NoError(t, err)
	assert.Equal(t, "/music/a.mp3", got.Path)

	r.Release(loc1)
	assert.Equal(t, 1, r.Len())
	_, err = r.Lookup(loc1)
	assert.True(t, errors.Is(err, ErrUnknownLocator))

	// Releasing twice is harmless.
	r.Release(loc1)
	assert.Equal(t, 1, r.Len())

	r.Close()
	assert.Equal(t, 0, r.Len())
	_, err = r.Lookup(loc2)
	assert.True(t, errors.Is(err, ErrUnknownLocator))
}

func TestRegistry_LookupForeignLocator(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup(Locator("blob:https://example.com/1"))
	assert.True(t, errors.Is(err, ErrUnknownLocator))
}

func TestReadTags_Untagged(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.wav", wavHeader)

	tags := ReadTags(path)
	assert.True(t, tags.IsEmpty())

	assert.True(t, ReadTags(filepath.Join(dir, "missing.wav")).IsEmpty())
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	album := filepath.Join(dir, "album")
	require.NoError(t, os.Mkdir(album, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(album, "scans.mp3"), 0o755))
	writeFile(t, album, "02.flac", wavHeader)
	writeFile(t, album, "01.mp3", wavHeader)
	writeFile(t, album, "cover.jpg", []byte("jpeg"))
	single := writeFile(t, dir, "notes.txt", []byte("text"))
	missing := filepath.Join(dir, "missing.wav")

	got, err := ExpandPaths([]string{single, album, missing})
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(album, "01.mp3"),
		filepath.Join(album, "02.flac"),
		missing,
	}, got)
}

func TestHasAudioExtension(t *testing.T) {
	assert.True(t, HasAudioExtension("/music/song.mp3"))
	assert.True(t, HasAudioExtension("LOUD.FLAC"))
	assert.False(t, HasAudioExtension("notes.txt"))
	assert.False(t, HasAudioExtension("noext"))

	exts := AudioExtensionList()
	assert.Contains(t, exts, ".ogg")
	assert.IsIncreasing(t, exts)
}
