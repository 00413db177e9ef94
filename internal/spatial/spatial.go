// Package spatial computes hierarchical spatial index cells for decimal
// degree coordinates using Uber's H3 hexagonal grid. Every point on Earth
// maps deterministically to exactly one cell per resolution; the catalog
// stores five resolutions, coarse country-sized cells down to sub-meter ones.
package spatial

import (
	"github.com/uber/h3-go/v4"

	"github.com/tphakala/photoindex-go/internal/errors"
)

// Resolutions are the H3 resolutions stored on every photo, coarse to fine.
// Approximate average cell areas: 3 ~12,000 km², 6 ~290 km², 9 ~11 km²,
// 12 ~0.3 km², 15 ~0.9 m².
var Resolutions = []int{3, 6, 9, 12, 15}

// Index maps a coordinate pair to one cell identifier per resolution in
// Resolutions. The computation is atomic: either all five cells are returned
// or none are.
func Index(lat, lon float64) (map[int]string, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, errors.Newf("coordinates out of range: %f, %f", lat, lon).
			Component("spatial").
			Category(errors.CategoryValidation).
			Build()
	}

	latLng := h3.NewLatLng(lat, lon)
	cells := make(map[int]string, len(Resolutions))
	for _, res := range Resolutions {
		cell := h3.LatLngToCell(latLng, res)
		if !cell.IsValid() {
			return nil, errors.Newf("invalid cell for %f, %f at resolution %d", lat, lon, res).
				Component("spatial").
				Category(errors.CategoryValidation).
				Build()
		}
		cells[res] = cell.String()
	}
	return cells, nil
}

// CellCenter returns the representative center coordinate of a cell. The
// geocoding enrichment job uses cell centers as the shared lookup point for
// every photo in the cell.
func CellCenter(cellID string) (lat, lon float64, err error) {
	cell := h3.Cell(h3.IndexFromString(cellID))
	if !cell.IsValid() {
		return 0, 0, errors.Newf("invalid cell identifier: %q", cellID).
			Component("spatial").
			Category(errors.CategoryValidation).
			Build()
	}
	center := h3.CellToLatLng(cell)
	return center.Lat, center.Lng, nil
}
