// Package validate cross-checks catalog records against an exiftool-style
// CSV export. It reports records missing from the catalog, GPS coordinates
// that drifted beyond tolerance, and capture timestamps that disagree.
package validate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/errors"
)

// gpsTolerance is the maximum allowed coordinate drift in decimal degrees,
// roughly 11 meters at the equator. EXIF rational to decimal conversion
// rounding stays well below it.
const gpsTolerance = 0.0001

// requiredColumns must be present in the CSV header.
var requiredColumns = []string{"SourceFile", "FileName"}

// Stats aggregates the outcome of one validation run.
type Stats struct {
	TotalRows         int
	Matched           int
	Missing           int
	GPSMismatch       int
	TimestampMismatch int
	Warnings          []string
}

// Issues is the total number of discrepancies found.
func (s *Stats) Issues() int {
	return s.Missing + s.GPSMismatch + s.TimestampMismatch
}

// ReportFunc receives one human-readable line per discrepancy or progress
// update.
type ReportFunc func(message string)

// CompareCSV validates every row of the CSV at csvPath against the catalog.
// Rows are keyed by SourceFile with any leading "./" stripped, matching the
// relative source path stored at ingestion time.
func CompareCSV(ds datastore.Interface, csvPath string, report ReportFunc) (*Stats, error) {
	if report == nil {
		report = func(string) {}
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, errors.New(err).
			Component("validate").
			Category(errors.CategoryFileIO).
			Context("path", csvPath).
			Build()
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Newf("reading CSV header: %v", err).
			Component("validate").
			Category(errors.CategoryValidation).
			Context("path", csvPath).
			Build()
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// exiftool CSV exports may carry a UTF-8 BOM on the first column
		columns[strings.TrimPrefix(name, "\ufeff")] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, errors.Newf("CSV missing required column %q", required).
				Component("validate").
				Category(errors.CategoryValidation).
				Context("path", csvPath).
				Build()
		}
	}

	stats := &Stats{}
	rowNum := 1 // header was row 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, errors.Newf("reading CSV row: %v", err).
				Component("validate").
				Category(errors.CategoryValidation).
				Context("path", csvPath).
				Build()
		}
		rowNum++
		stats.TotalRows++

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		sourceFile := strings.TrimLeft(field("SourceFile"), "./")
		fileName := field("FileName")
		if sourceFile == "" {
			continue
		}

		photo, err := ds.GetPhotoByPath(sourceFile)
		if errors.Is(err, datastore.ErrPhotoNotFound) {
			stats.Missing++
			warn(stats, report, fmt.Sprintf("Row %d: MISSING - %s (source: %s)", rowNum, fileName, sourceFile))
			continue
		}
		if err != nil {
			return stats, err
		}

		hasMismatch := false

		csvLat := parseCoordinate(field("GPSLatitude"))
		csvLon := parseCoordinate(field("GPSLongitude"))
		if csvLat != nil && csvLon != nil {
			switch {
			case photo.Latitude == nil || photo.Longitude == nil:
				stats.GPSMismatch++
				warn(stats, report, fmt.Sprintf("Row %d: GPS MISMATCH - %s (CSV has GPS, DB missing)", rowNum, fileName))
				hasMismatch = true
			case math.Abs(*photo.Latitude-*csvLat) > gpsTolerance || math.Abs(*photo.Longitude-*csvLon) > gpsTolerance:
				stats.GPSMismatch++
				warn(stats, report, fmt.Sprintf("Row %d: GPS MISMATCH - %s (CSV: %v, %v vs DB: %v, %v)",
					rowNum, fileName, *csvLat, *csvLon, *photo.Latitude, *photo.Longitude))
				hasMismatch = true
			}
		}

		csvDateTime := strings.TrimSpace(field("DateTimeOriginal"))
		if csvDateTime != "" {
			dbDateTime := strings.TrimSpace(photo.DateTimeOriginalText)
			if csvDateTime != dbDateTime {
				stats.TimestampMismatch++
				warn(stats, report, fmt.Sprintf("Row %d: TIMESTAMP MISMATCH - %s (CSV: %q vs DB: %q)",
					rowNum, fileName, csvDateTime, dbDateTime))
				hasMismatch = true
			}
		}

		if !hasMismatch {
			stats.Matched++
		}

		if stats.TotalRows%100 == 0 {
			report(fmt.Sprintf("Processed %d rows...", stats.TotalRows))
		}
	}

	return stats, nil
}

func warn(stats *Stats, report ReportFunc, message string) {
	stats.Warnings = append(stats.Warnings, message)
	report(message)
}

// parseCoordinate parses a decimal degree value, returning nil for empty or
// unparseable fields.
func parseCoordinate(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &v
}
