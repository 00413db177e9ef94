// model.go this code defines the data model for the photo catalog
package datastore

import "time"

// Spatial index resolutions stored on every photo, coarse to fine. Approximate
// cell areas: res 3 ~12,000 km², res 6 ~290 km², res 9 ~11 km², res 12 ~0.3 km²,
// res 15 ~0.9 m².
var SpatialResolutions = []int{3, 6, 9, 12, 15}

// Photo represents a single catalog record, keyed by the file path relative
// to the ingestion root.
type Photo struct {
	ID         uint   `gorm:"primaryKey"`
	SourcePath string `gorm:"uniqueIndex:idx_photos_source_path;size:500"` // file path relative to ingestion root
	FileName   string `gorm:"index:idx_photos_file_name;size:255"`
	Directory  string `gorm:"size:500"`

	// Original capture timestamp as free-form text from metadata, and the
	// timezone-corrected timestamp computed during enrichment.
	DateTimeOriginalText string     `gorm:"size:50"`
	DateTimeTaken        *time.Time `gorm:"index:idx_photos_date_time_taken"`

	// GPS coordinates in decimal degrees, rounded to six decimal places.
	Latitude  *float64 `gorm:"index:idx_photos_lat_lon"`
	Longitude *float64 `gorm:"index:idx_photos_lat_lon"`
	Altitude  *float64 // meters, negative below sea level

	// Hierarchical spatial index cells, either all set or all unset.
	CellRes3  *string `gorm:"index:idx_photos_cell_res_3;size:15"`
	CellRes6  *string `gorm:"index:idx_photos_cell_res_6;size:15"`
	CellRes9  *string `gorm:"index:idx_photos_cell_res_9;size:15"`
	CellRes12 *string `gorm:"index:idx_photos_cell_res_12;size:15"`
	CellRes15 *string `gorm:"index:idx_photos_cell_res_15;size:15"`

	// Content fingerprints for duplicate detection, 16 hex characters each.
	PerceptualHash *string `gorm:"index:idx_photos_perceptual_hash;size:16"`
	AverageHash    *string `gorm:"index:idx_photos_average_hash;size:16"`
	DifferenceHash *string `gorm:"index:idx_photos_difference_hash;size:16"`

	// Reverse geocoding enrichment, populated by the geocode job.
	Location    *string    `gorm:"size:255"`
	CountryCode *string    `gorm:"index:idx_photos_country_code;size:2"` // ISO 3166-1 alpha-2
	GeocodedAt  *time.Time

	// Complete tag metadata as extracted from the file.
	Metadata map[string]any `gorm:"serializer:json"`

	ImportedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// HasCoordinates reports whether both latitude and longitude were extracted.
// A lone coordinate is never stored.
func (p *Photo) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// HasSpatialIndex reports whether all five spatial index cells are present.
func (p *Photo) HasSpatialIndex() bool {
	return p.CellRes3 != nil && p.CellRes6 != nil && p.CellRes9 != nil &&
		p.CellRes12 != nil && p.CellRes15 != nil
}

// HasFingerprint reports whether the perceptual hash has been computed.
func (p *Photo) HasFingerprint() bool {
	return p.PerceptualHash != nil
}

// IsFullyProcessed reports whether re-ingesting this photo without forcing
// would be a no-op. A fingerprint is always required; spatial index cells are
// required only when coordinates exist.
func (p *Photo) IsFullyProcessed() bool {
	if !p.HasFingerprint() {
		return false
	}
	if p.HasCoordinates() {
		return p.HasSpatialIndex()
	}
	return true
}

// CellAtResolution returns the spatial index cell stored for the given
// resolution, or nil when the resolution is unknown or the cell is unset.
func (p *Photo) CellAtResolution(resolution int) *string {
	switch resolution {
	case 3:
		return p.CellRes3
	case 6:
		return p.CellRes6
	case 9:
		return p.CellRes9
	case 12:
		return p.CellRes12
	case 15:
		return p.CellRes15
	default:
		return nil
	}
}

// SetCells stores one cell identifier per resolution, in the order of
// SpatialResolutions. Passing nil clears all five.
func (p *Photo) SetCells(cells map[int]string) {
	if cells == nil {
		p.CellRes3, p.CellRes6, p.CellRes9, p.CellRes12, p.CellRes15 = nil, nil, nil, nil, nil
		return
	}
	set := func(dst **string, res int) {
		if cell, ok := cells[res]; ok {
			c := cell
			*dst = &c
		} else {
			*dst = nil
		}
	}
	set(&p.CellRes3, 3)
	set(&p.CellRes6, 6)
	set(&p.CellRes9, 9)
	set(&p.CellRes12, 12)
	set(&p.CellRes15, 15)
}

// ClearEnrichment resets the reverse geocoding fields. Called when
// coordinates are recomputed, since a changed coordinate invalidates any
// prior enrichment.
func (p *Photo) ClearEnrichment() {
	p.Location = nil
	p.CountryCode = nil
	p.GeocodedAt = nil
	p.DateTimeTaken = nil
}

// CellCount is one row of a spatial cell distribution query.
type CellCount struct {
	Cell       string
	PhotoCount int64
}

// cellColumn maps a spatial resolution to its database column. Used instead
// of building column names from the resolution number at query time.
var cellColumn = map[int]string{
	3:  "cell_res3",
	6:  "cell_res6",
	9:  "cell_res9",
	12: "cell_res12",
	15: "cell_res15",
}
