// Package exifdata extracts embedded tag metadata from image files and
// normalizes the heterogeneous GPS coordinate encodings found in the wild
// into decimal degrees.
package exifdata

import (
	"log/slog"
	"math"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/tphakala/photoindex-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("exifdata")
		if serviceLogger == nil {
			serviceLogger = slog.Default().With("service", "exifdata")
		}
	})
	return serviceLogger
}

// Metadata is the normalized result of extracting one file's embedded tags.
type Metadata struct {
	// Tags maps tag name to value. Values are strings, integers, floats or
	// slices of those, depending on the tag format.
	Tags map[string]any

	// CaptureTimeText is the original capture timestamp as free-form text,
	// taken from the DateTime tag, falling back to DateTimeOriginal.
	CaptureTimeText string

	// Decimal-degree coordinates, set only when both latitude and longitude
	// parsed successfully. Altitude is set only alongside them.
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
}

// HasCoordinates reports whether both coordinates were extracted.
func (m *Metadata) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Extract opens the image file and reads its embedded tag block. Extraction
// failure is non-fatal: files without a tag block, or in containers that
// cannot be decoded, produce an empty tag mapping rather than an error. An
// error is returned only when the file itself cannot be opened.
func Extract(path string) (*Metadata, error) {
	meta := &Metadata{Tags: map[string]any{}}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil || x == nil {
		getLogger().Warn("Could not extract metadata", "path", path, "error", err)
		return meta, nil
	}

	collector := tagCollector{tags: meta.Tags}
	if err := x.Walk(&collector); err != nil {
		getLogger().Warn("Tag walk aborted", "path", path, "error", err)
	}

	meta.CaptureTimeText = captureTimeFromTags(meta.Tags)
	extractGPS(x, meta, path)

	return meta, nil
}

// captureTimeFromTags picks the capture timestamp text: DateTime wins,
// DateTimeOriginal is the fallback. Exactly one of them is used, never a
// merge.
func captureTimeFromTags(tags map[string]any) string {
	if v, ok := tags[string(exif.DateTime)].(string); ok && v != "" {
		return v
	}
	if v, ok := tags[string(exif.DateTimeOriginal)].(string); ok && v != "" {
		return v
	}
	return ""
}

// tagCollector accumulates every tag of the walked IFDs into a name to value
// mapping.
type tagCollector struct {
	tags map[string]any
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.tags[string(name)] = tagValue(tag)
	return nil
}

// tagValue converts a raw TIFF tag into a plain Go value. Binary payloads are
// decoded as UTF-8 text when possible, with the tag's textual representation
// as the fallback, so no information is dropped and unparseable payloads
// cannot abort extraction.
func tagValue(tag *tiff.Tag) any {
	switch tag.Format() {
	case tiff.StringVal:
		if s, err := tag.StringVal(); err == nil {
			return s
		}
		return tag.String()
	case tiff.IntVal:
		if tag.Count == 1 {
			if v, err := tag.Int64(0); err == nil {
				return v
			}
			return tag.String()
		}
		values := make([]int64, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			v, err := tag.Int64(i)
			if err != nil {
				return tag.String()
			}
			values = append(values, v)
		}
		return values
	case tiff.FloatVal:
		if tag.Count == 1 {
			if v, err := tag.Float(0); err == nil {
				return v
			}
			return tag.String()
		}
		values := make([]float64, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			v, err := tag.Float(i)
			if err != nil {
				return tag.String()
			}
			values = append(values, v)
		}
		return values
	case tiff.RatVal:
		components, ok := ratComponents(tag)
		if !ok {
			return tag.String()
		}
		if len(components) == 1 {
			return components[0]
		}
		return components
	default:
		// Undefined or unknown format, raw bytes
		if utf8.Valid(tag.Val) {
			return string(tag.Val)
		}
		return tag.String()
	}
}

// ratComponents converts a rational-valued tag into float components.
func ratComponents(tag *tiff.Tag) ([]float64, bool) {
	components := make([]float64, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return nil, false
		}
		components = append(components, float64(num)/float64(den))
	}
	return components, true
}

// extractGPS reads the GPS sub-structure if present. Absence is not an error,
// most photos lack GPS. Coordinates are committed only when both latitude and
// longitude parse; a lone coordinate is useless and discarded silently.
func extractGPS(x *exif.Exif, meta *Metadata, path string) {
	lat, latOK := gpsCoordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	lon, lonOK := gpsCoordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if !latOK || !lonOK {
		if latOK != lonOK {
			getLogger().Debug("Discarding lone GPS coordinate", "path", path)
		}
		return
	}

	lat = roundCoordinate(lat)
	lon = roundCoordinate(lon)
	meta.Latitude = &lat
	meta.Longitude = &lon

	if alt, ok := gpsAltitude(x); ok {
		meta.Altitude = &alt
	}
}

// gpsCoordinate reads one coordinate tag plus its hemisphere reference tag
// and normalizes it to signed decimal degrees.
func gpsCoordinate(x *exif.Exif, field, refField exif.FieldName) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false
	}

	var components []float64
	switch tag.Format() {
	case tiff.RatVal:
		var ok bool
		components, ok = ratComponents(tag)
		if !ok {
			return 0, false
		}
	case tiff.IntVal:
		for i := 0; i < int(tag.Count); i++ {
			v, err := tag.Int64(i)
			if err != nil {
				return 0, false
			}
			components = append(components, float64(v))
		}
	case tiff.FloatVal:
		for i := 0; i < int(tag.Count); i++ {
			v, err := tag.Float(i)
			if err != nil {
				return 0, false
			}
			components = append(components, v)
		}
	default:
		return 0, false
	}

	value, ok := NormalizeCoordinate(components)
	if !ok {
		return 0, false
	}

	if refTag, err := x.Get(refField); err == nil {
		if ref, err := refTag.StringVal(); err == nil {
			value = ApplyHemisphere(value, ref)
		}
	}

	return value, true
}

// gpsAltitude reads the altitude tag, in meters. An altitude reference of 1
// means below sea level.
func gpsAltitude(x *exif.Exif) (float64, bool) {
	tag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		return 0, false
	}

	var alt float64
	switch tag.Format() {
	case tiff.RatVal:
		num, den, err := tag.Rat2(0)
		if err != nil || den == 0 {
			return 0, false
		}
		alt = float64(num) / float64(den)
	case tiff.IntVal:
		v, err := tag.Int64(0)
		if err != nil {
			return 0, false
		}
		alt = float64(v)
	case tiff.FloatVal:
		v, err := tag.Float(0)
		if err != nil {
			return 0, false
		}
		alt = v
	default:
		return 0, false
	}

	if refTag, err := x.Get(exif.GPSAltitudeRef); err == nil {
		if ref, err := refTag.Int(0); err == nil && ref == 1 && alt > 0 {
			alt = -alt
		}
	}

	return math.Round(alt*100) / 100, true
}

// roundCoordinate fixes coordinate precision to six decimal places, about
// 0.1 m of ground distance, matching the catalog column precision.
func roundCoordinate(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
