package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.png", true},
		{"photo.heic", true},
		{"photo.webp", true},
		{"photo.psd", true},
		{"PHOTO.JPG", true},
		{"photo.Jpeg", true},
		{"photo.txt", false},
		{"photo.gif", false},
		{"photo.jpg.bak", false},
		{"photo", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsImageFile(tt.path), tt.path)
	}
}

func TestDiscoverPhotoFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "b.jpg"))
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "c.JPEG"))
	touch(t, filepath.Join(dir, "d.txt"))
	touch(t, filepath.Join(dir, "sub", "e.webp"))

	files, err := DiscoverPhotoFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	names := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names[i] = filepath.ToSlash(rel)
	}
	assert.Equal(t, []string{"a.png", "b.jpg", "c.JPEG", "sub/e.webp"}, names)
}

func TestDiscoverPhotoFilesDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.jpg", "m.png", "a.jpeg"} {
		touch(t, filepath.Join(dir, name))
	}

	first, err := DiscoverPhotoFiles(dir)
	require.NoError(t, err)
	second, err := DiscoverPhotoFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDiscoverPhotoFilesEmptyDirectory(t *testing.T) {
	files, err := DiscoverPhotoFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverPhotoFilesMissingRoot(t *testing.T) {
	_, err := DiscoverPhotoFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDiscoverPhotoFilesRootIsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.jpg")
	touch(t, path)

	_, err := DiscoverPhotoFiles(path)
	assert.Error(t, err)
}
