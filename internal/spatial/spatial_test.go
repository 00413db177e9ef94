package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexReturnsAllResolutions(t *testing.T) {
	cells, err := Index(60.1699, 24.9384)
	require.NoError(t, err)
	require.Len(t, cells, len(Resolutions))

	for _, res := range Resolutions {
		cell, ok := cells[res]
		require.True(t, ok, "missing cell for resolution %d", res)
		assert.Len(t, cell, 15, "cell identifier for resolution %d", res)
	}
}

func TestIndexIsDeterministic(t *testing.T) {
	first, err := Index(60.1699, 24.9384)
	require.NoError(t, err)
	second, err := Index(60.1699, 24.9384)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIndexNearbyPointsShareCoarseCell(t *testing.T) {
	// Points well under a meter apart share every resolution except the
	// finest; points far apart differ even at the coarsest.
	a, err := Index(60.169900, 24.938400)
	require.NoError(t, err)
	b, err := Index(60.169901, 24.938401)
	require.NoError(t, err)
	far, err := Index(-33.868800, 151.209300)
	require.NoError(t, err)

	assert.Equal(t, a[3], b[3])
	assert.Equal(t, a[9], b[9])
	assert.NotEqual(t, a[3], far[3])
	assert.NotEqual(t, a[15], far[15])
}

func TestIndexRejectsOutOfRangeCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude above range", 90.1, 0},
		{"latitude below range", -90.1, 0},
		{"longitude above range", 0, 180.1},
		{"longitude below range", 0, -180.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Index(tt.lat, tt.lon)
			assert.Error(t, err)
		})
	}
}

func TestIndexAcceptsRangeBoundaries(t *testing.T) {
	_, err := Index(90, 180)
	assert.NoError(t, err)
	_, err = Index(-90, -180)
	assert.NoError(t, err)
}

func TestCellCenterRoundTrip(t *testing.T) {
	cells, err := Index(60.1699, 24.9384)
	require.NoError(t, err)

	// Re-indexing a cell's center at its own resolution lands back in the
	// same cell.
	for _, res := range Resolutions {
		lat, lon, err := CellCenter(cells[res])
		require.NoError(t, err)

		again, err := Index(lat, lon)
		require.NoError(t, err)
		assert.Equal(t, cells[res], again[res], "resolution %d", res)
	}
}

func TestCellCenterRejectsInvalidIdentifier(t *testing.T) {
	_, _, err := CellCenter("not-a-cell")
	assert.Error(t, err)

	_, _, err = CellCenter("")
	assert.Error(t, err)
}
