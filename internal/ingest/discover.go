package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tphakala/photoindex-go/internal/errors"
)

// imageExtensions is the fixed allow-list of recognized image file
// extensions, matched case-insensitively.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
	".psd":  true,
}

// IsImageFile reports whether the path has a recognized image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// DiscoverPhotoFiles recursively enumerates all image files under root and
// returns them lexicographically sorted. The scan is best-effort: an
// unreadable subdirectory is logged and skipped without failing the whole
// scan, but a readable file matching the extension filter is never silently
// dropped.
func DiscoverPhotoFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.New(err).
			Component("ingest").
			Category(errors.CategoryFileIO).
			Context("operation", "discover").
			Context("root", root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.Newf("not a directory: %s", root).
			Component("ingest").
			Category(errors.CategoryValidation).
			Build()
	}

	var photoFiles []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip this entry but keep walking
			getLogger().Warn("Error accessing path during scan", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsImageFile(d.Name()) {
			absPath, err := filepath.Abs(path)
			if err != nil {
				absPath = path
			}
			photoFiles = append(photoFiles, absPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.New(walkErr).
			Component("ingest").
			Category(errors.CategoryFileIO).
			Context("operation", "discover").
			Context("root", root).
			Build()
	}

	sort.Strings(photoFiles)
	return photoFiles, nil
}
