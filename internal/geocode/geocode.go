// Package geocode enriches already-indexed catalog records with
// human-readable place names. Photos are grouped by their spatial index cell
// so that every photo taken at roughly the same place shares one reverse
// geocoding lookup of the cell center, keeping API usage proportional to the
// number of distinct places rather than the number of photos.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/errors"
	"github.com/tphakala/photoindex-go/internal/logging"
	"github.com/tphakala/photoindex-go/internal/spatial"
)

// exifTimeLayout is the timestamp layout used by tag metadata.
const exifTimeLayout = "2006:01:02 15:04:05"

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("geocode")
		if serviceLogger == nil {
			serviceLogger = slog.Default().With("service", "geocode")
		}
	})
	return serviceLogger
}

// Location is one reverse geocoding result.
type Location struct {
	FormattedAddress string
	CountryCode      string // ISO 3166-1 alpha-2
}

// Provider resolves a coordinate to a human-readable location. Implemented
// by the Google Maps client; treated as an opaque network dependency.
type Provider interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error)
}

// Stats aggregates the outcome of one geocoding run.
type Stats struct {
	TotalPhotos     int
	ProcessedPhotos int
	SkippedPhotos   int
	APICalls        int
	Errors          int
	ErrorDetails    []string
}

// ProgressFunc receives human-readable progress messages during a run.
type ProgressFunc func(message string)

// Service runs the geocoding enrichment job.
type Service struct {
	ds         datastore.Interface
	provider   Provider
	tzFinder   tzf.F
	progress   ProgressFunc
	log        *slog.Logger
	resolution int
	batchSize  int
}

// New creates a geocoding service. The progress callback may be nil.
func New(ds datastore.Interface, provider Provider, settings *conf.GeocodingSettings, progress ProgressFunc) (*Service, error) {
	if progress == nil {
		progress = func(string) {}
	}

	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, errors.New(err).
			Component("geocode").
			Category(errors.CategorySystem).
			Context("operation", "init_timezone_finder").
			Build()
	}

	return &Service{
		ds:         ds,
		provider:   provider,
		tzFinder:   finder,
		progress:   progress,
		log:        getLogger(),
		resolution: settings.Resolution,
		batchSize:  settings.BatchSize,
	}, nil
}

// GeocodePhotos enriches all photos needing geocoding, one provider call per
// distinct spatial cell. A failing cell is counted and skipped; the run
// continues with the remaining cells.
func (s *Service) GeocodePhotos(ctx context.Context, recalculate bool) (*Stats, error) {
	stats := &Stats{}

	photos, err := s.ds.GetPhotosForGeocoding(recalculate)
	if err != nil {
		return stats, err
	}
	stats.TotalPhotos = len(photos)

	if stats.TotalPhotos == 0 {
		s.progress("No photos to geocode")
		return stats, nil
	}

	s.progress(fmt.Sprintf("Geocoding %d photos using spatial resolution %d", stats.TotalPhotos, s.resolution))

	groups := s.groupByCell(photos)
	s.progress(fmt.Sprintf("Grouped into %d unique locations", len(groups)))

	// Deterministic cell order
	cells := make([]string, 0, len(groups))
	for cell := range groups {
		cells = append(cells, cell)
	}
	sort.Strings(cells)

	for _, cell := range cells {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		group := groups[cell]

		lat, lon, err := spatial.CellCenter(cell)
		if err != nil {
			s.recordCellError(stats, cell, group, err)
			continue
		}

		location, err := s.provider.ReverseGeocode(ctx, lat, lon)
		stats.APICalls++
		if err != nil {
			s.recordCellError(stats, cell, group, err)
			continue
		}
		if location == nil {
			s.log.Warn("No geocoding result for cell", "cell", cell)
			stats.SkippedPhotos += len(group)
			continue
		}

		if err := s.applyToPhotos(group, location, lat, lon); err != nil {
			s.recordCellError(stats, cell, group, err)
			continue
		}
		stats.ProcessedPhotos += len(group)

		if stats.APICalls%10 == 0 {
			s.progress(fmt.Sprintf("Processed %d/%d photos (%d API calls)",
				stats.ProcessedPhotos, stats.TotalPhotos, stats.APICalls))
		}
	}

	return stats, nil
}

func (s *Service) recordCellError(stats *Stats, cell string, group []*datastore.Photo, err error) {
	errorMsg := fmt.Sprintf("Error geocoding cell %s: %v", cell, err)
	s.log.Error("Geocoding cell failed", "cell", cell, "error", err)
	stats.Errors++
	stats.ErrorDetails = append(stats.ErrorDetails, errorMsg)
	stats.SkippedPhotos += len(group)
}

// groupByCell buckets photos by their spatial cell at the configured
// resolution. Photos without a cell at that resolution are left out; they
// will be picked up once re-ingestion computes their index.
func (s *Service) groupByCell(photos []datastore.Photo) map[string][]*datastore.Photo {
	groups := make(map[string][]*datastore.Photo)
	for i := range photos {
		cell := photos[i].CellAtResolution(s.resolution)
		if cell == nil {
			continue
		}
		groups[*cell] = append(groups[*cell], &photos[i])
	}
	return groups
}

// applyToPhotos writes one location result to every photo of a cell and
// computes the timezone-corrected capture time. Updates are persisted in
// batches of the configured size.
func (s *Service) applyToPhotos(photos []*datastore.Photo, location *Location, lat, lon float64) error {
	now := time.Now()

	// One timezone per cell, looked up at the cell center.
	tzName := s.tzFinder.GetTimezoneName(lon, lat)
	var tzLocation *time.Location
	if tzName != "" {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			s.log.Warn("Could not load timezone", "timezone", tzName, "error", err)
		} else {
			tzLocation = loc
		}
	}

	for _, photo := range photos {
		address := location.FormattedAddress
		if len(address) > 255 {
			address = address[:255]
		}
		countryCode := location.CountryCode
		if len(countryCode) > 2 {
			countryCode = countryCode[:2]
		}
		photo.Location = &address
		photo.CountryCode = &countryCode
		photo.GeocodedAt = &now

		if tzLocation != nil && photo.DateTimeOriginalText != "" {
			taken, err := CaptureTimeInZone(photo.DateTimeOriginalText, tzLocation)
			if err != nil {
				s.log.Warn("Could not compute timezone-corrected capture time",
					"file", photo.FileName, "error", err)
			} else {
				photo.DateTimeTaken = &taken
			}
		}
	}

	fields := []string{"location", "country_code", "geocoded_at", "date_time_taken"}
	for start := 0; start < len(photos); start += s.batchSize {
		end := min(start+s.batchSize, len(photos))
		if err := s.ds.BulkUpdatePhotos(photos[start:end], fields); err != nil {
			return err
		}
	}
	return nil
}

// CaptureTimeInZone parses a capture timestamp in tag metadata layout
// ("2006:01:02 15:04:05") as wall time in the given IANA zone.
func CaptureTimeInZone(text string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(exifTimeLayout, text, loc)
}
