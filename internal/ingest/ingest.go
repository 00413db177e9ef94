// Package ingest implements the photo ingestion pipeline: it discovers image
// files under a directory, extracts their metadata, derives spatial index
// cells and perceptual fingerprints, and applies an idempotent
// create-or-update policy against the catalog keyed by relative file path.
package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/errors"
	"github.com/tphakala/photoindex-go/internal/exifdata"
	"github.com/tphakala/photoindex-go/internal/fingerprint"
	"github.com/tphakala/photoindex-go/internal/logging"
	"github.com/tphakala/photoindex-go/internal/spatial"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("ingest")
		if serviceLogger == nil {
			serviceLogger = slog.Default().With("service", "ingest")
		}
	})
	return serviceLogger
}

// Action is the outcome of processing one file.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
)

// Result reports the action taken for one file and the resulting record.
type Result struct {
	Action Action
	Photo  *datastore.Photo
}

// Stats aggregates the outcome of one directory ingestion run.
type Stats struct {
	TotalFiles   int
	Processed    int
	Created      int
	Updated      int
	Skipped      int
	Errors       int
	ErrorDetails []string
}

// ProgressFunc receives human-readable progress messages during a run.
type ProgressFunc func(message string)

// Service runs the ingestion pipeline against a catalog datastore. It is
// stateless across files except for aggregate statistics; each file's
// pipeline is independent and keyed only by its own path.
type Service struct {
	ds       datastore.Interface
	progress ProgressFunc
	log      *slog.Logger
}

// New creates an ingestion service. The progress callback may be nil.
func New(ds datastore.Interface, progress ProgressFunc) *Service {
	if progress == nil {
		progress = func(string) {}
	}
	return &Service{
		ds:       ds,
		progress: progress,
		log:      getLogger(),
	}
}

// ProcessDirectory ingests every recognized image file under directoryPath.
// A single file's failure is logged, counted and recorded; it never stops
// processing of subsequent files.
func (s *Service) ProcessDirectory(directoryPath string, forceReprocess bool) (*Stats, error) {
	stats := &Stats{}

	photoFiles, err := DiscoverPhotoFiles(directoryPath)
	if err != nil {
		return stats, err
	}
	stats.TotalFiles = len(photoFiles)

	s.progress(fmt.Sprintf("Found %d photo files in %s", stats.TotalFiles, directoryPath))

	for _, filePath := range photoFiles {
		result, err := s.ProcessSinglePhoto(filePath, directoryPath, forceReprocess)
		if err != nil {
			errorMsg := fmt.Sprintf("Error processing %s: %v", filePath, err)
			s.log.Error("Photo processing failed", "path", filePath, "error", err)
			stats.Errors++
			stats.ErrorDetails = append(stats.ErrorDetails, errorMsg)
			continue
		}

		switch result.Action {
		case ActionSkipped:
			stats.Skipped++
		case ActionCreated:
			stats.Created++
			stats.Processed++
		case ActionUpdated:
			stats.Updated++
			stats.Processed++
		}

		// Progress update every 10 files
		if done := stats.Processed + stats.Skipped; done%10 == 0 {
			s.progress(fmt.Sprintf("Progress: %d/%d files", done, stats.TotalFiles))
		}
	}

	return stats, nil
}

// ProcessSinglePhoto runs the full pipeline for one file. The catalog key is
// the file's path relative to baseDirectory. Existing records that are
// already fully processed are skipped unless forceReprocess is set; that is
// the idempotence guarantee making repeated runs over an unchanged tree
// near-zero-cost.
func (s *Service) ProcessSinglePhoto(filePath, baseDirectory string, forceReprocess bool) (*Result, error) {
	relativePath, err := filepath.Rel(baseDirectory, filePath)
	if err != nil {
		return nil, errors.New(err).
			Component("ingest").
			Category(errors.CategoryValidation).
			Context("path", filePath).
			Context("base", baseDirectory).
			Build()
	}

	photo, err := s.ds.GetPhotoByPath(relativePath)
	isNew := false
	switch {
	case err == nil:
	case errors.Is(err, datastore.ErrPhotoNotFound):
		photo = &datastore.Photo{SourcePath: relativePath}
		isNew = true
	default:
		return nil, err
	}

	if !forceReprocess && !isNew && photo.IsFullyProcessed() {
		return &Result{Action: ActionSkipped, Photo: photo}, nil
	}

	s.extractBasicInfo(photo, filePath, relativePath)
	if err := s.extractMetadata(photo, filePath); err != nil {
		return nil, err
	}
	s.calculateSpatialIndex(photo, filePath)
	s.calculateFingerprints(photo, filePath)

	// Reset enrichment when reprocessing, coordinates may have changed or
	// disappeared and stale geocoding tied to them must never persist.
	if forceReprocess {
		photo.ClearEnrichment()
	}

	if err := s.ds.SavePhoto(photo); err != nil {
		return nil, err
	}

	action := ActionUpdated
	if isNew {
		action = ActionCreated
	}
	return &Result{Action: action, Photo: photo}, nil
}

// extractBasicInfo derives the file name and directory from the paths.
func (s *Service) extractBasicInfo(photo *datastore.Photo, filePath, relativePath string) {
	photo.FileName = filepath.Base(filePath)
	directory := filepath.Dir(relativePath)
	if directory == "." {
		directory = ""
	}
	photo.Directory = directory
}

// extractMetadata reads the file's tag block and commits the tag mapping,
// capture time text and coordinates to the record. Tag decode failures are
// absorbed inside the extractor; only an unreadable file is an error here.
func (s *Service) extractMetadata(photo *datastore.Photo, filePath string) error {
	meta, err := exifdata.Extract(filePath)
	if err != nil {
		return errors.New(err).
			Component("ingest").
			Category(errors.CategoryFileIO).
			Context("operation", "extract_metadata").
			Context("path", filePath).
			Build()
	}

	photo.Metadata = meta.Tags
	photo.DateTimeOriginalText = meta.CaptureTimeText

	// Assigned unconditionally: when a reprocessed file no longer carries
	// GPS, stale coordinates must not survive on the record.
	photo.Latitude = meta.Latitude
	photo.Longitude = meta.Longitude
	photo.Altitude = meta.Altitude
	return nil
}

// calculateSpatialIndex derives the five spatial cells from the coordinates
// in one atomic computation; they are either all set or all cleared.
func (s *Service) calculateSpatialIndex(photo *datastore.Photo, filePath string) {
	if !photo.HasCoordinates() {
		photo.SetCells(nil)
		return
	}

	cells, err := spatial.Index(*photo.Latitude, *photo.Longitude)
	if err != nil {
		s.log.Warn("Could not compute spatial index", "path", filePath, "error", err)
		photo.SetCells(nil)
		return
	}
	photo.SetCells(cells)
}

// calculateFingerprints computes the perceptual hashes. Decode failure is
// non-fatal and logged; the record is still saved with whatever else was
// extracted, and any previously computed fingerprint is kept.
func (s *Service) calculateFingerprints(photo *datastore.Photo, filePath string) {
	fps, err := fingerprint.FromFile(filePath)
	if err != nil {
		s.log.Warn("Could not calculate fingerprint", "path", filePath, "error", err)
		return
	}
	photo.PerceptualHash = &fps.Perceptual
	photo.AverageHash = &fps.Average
	photo.DifferenceHash = &fps.Difference
}
