package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&Photo{})
	require.NoError(t, err)

	return &DataStore{DB: db}
}

// newTestPhoto builds a photo with coordinates and a full spatial index.
func newTestPhoto(sourcePath string, lat, lon float64, cellRes9 string) *Photo {
	p := &Photo{
		SourcePath:     sourcePath,
		FileName:       sourcePath,
		Latitude:       &lat,
		Longitude:      &lon,
		PerceptualHash: ptr("a1b2c3d4e5f60718"),
	}
	p.SetCells(map[int]string{
		3: "831126fffffffff", 6: "861126d87ffffff", 9: cellRes9,
		12: "8c1126d8a4b19ff", 15: "8f1126d8a4b1950",
	})
	return p
}

func TestGetPhotoByPathNotFound(t *testing.T) {
	ds := setupTestDB(t)

	_, err := ds.GetPhotoByPath("nope.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestSavePhotoRequiresSourcePath(t *testing.T) {
	ds := setupTestDB(t)

	err := ds.SavePhoto(&Photo{})
	assert.Error(t, err)
}

func TestSavePhotoCreateAndFetch(t *testing.T) {
	ds := setupTestDB(t)

	photo := newTestPhoto("2023/test.jpg", 60.1699, 24.9384, "891126d8a4bffff")
	photo.Metadata = map[string]any{"Make": "TestCam", "ISO": int64(100)}
	require.NoError(t, ds.SavePhoto(photo))
	assert.NotZero(t, photo.ID)

	fetched, err := ds.GetPhotoByPath("2023/test.jpg")
	require.NoError(t, err)
	assert.Equal(t, photo.ID, fetched.ID)
	assert.Equal(t, "TestCam", fetched.Metadata["Make"])
	require.NotNil(t, fetched.Latitude)
	assert.InDelta(t, 60.1699, *fetched.Latitude, 1e-9)
	assert.True(t, fetched.IsFullyProcessed())
}

func TestSavePhotoUpsertOnSourcePath(t *testing.T) {
	ds := setupTestDB(t)

	first := newTestPhoto("dup.jpg", 60.1699, 24.9384, "891126d8a4bffff")
	require.NoError(t, ds.SavePhoto(first))

	// A second record for the same path, saved without knowledge of the
	// first one's ID, must update the existing row rather than duplicate it.
	second := newTestPhoto("dup.jpg", 61.4978, 23.7610, "891126d8a4bffff")
	require.NoError(t, ds.SavePhoto(second))

	count, err := ds.CountPhotos()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	fetched, err := ds.GetPhotoByPath("dup.jpg")
	require.NoError(t, err)
	require.NotNil(t, fetched.Latitude)
	assert.InDelta(t, 61.4978, *fetched.Latitude, 1e-9)
}

func TestGetPhotosForGeocoding(t *testing.T) {
	ds := setupTestDB(t)
	now := time.Now()

	// Needs geocoding: has coordinates, never geocoded
	require.NoError(t, ds.SavePhoto(newTestPhoto("a.jpg", 60.1699, 24.9384, "891126d8a4bffff")))

	// Already geocoded
	done := newTestPhoto("b.jpg", 60.1699, 24.9384, "891126d8a4bffff")
	done.GeocodedAt = &now
	require.NoError(t, ds.SavePhoto(done))

	// No coordinates at all
	require.NoError(t, ds.SavePhoto(&Photo{SourcePath: "c.jpg", PerceptualHash: ptr("a1b2c3d4e5f60718")}))

	pending, err := ds.GetPhotosForGeocoding(false)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a.jpg", pending[0].SourcePath)

	all, err := ds.GetPhotosForGeocoding(true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := ds.CountPhotosNeedingGeocoding()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBulkUpdatePhotos(t *testing.T) {
	ds := setupTestDB(t)

	a := newTestPhoto("a.jpg", 60.1699, 24.9384, "891126d8a4bffff")
	b := newTestPhoto("b.jpg", 60.1710, 24.9390, "891126d8a4bffff")
	require.NoError(t, ds.SavePhoto(a))
	require.NoError(t, ds.SavePhoto(b))

	now := time.Now()
	for _, p := range []*Photo{a, b} {
		p.Location = ptr("Helsinki, Finland")
		p.CountryCode = ptr("FI")
		p.GeocodedAt = &now
	}

	err := ds.BulkUpdatePhotos([]*Photo{a, b}, []string{"location", "country_code", "geocoded_at"})
	require.NoError(t, err)

	fetched, err := ds.GetPhotoByPath("a.jpg")
	require.NoError(t, err)
	require.NotNil(t, fetched.Location)
	assert.Equal(t, "Helsinki, Finland", *fetched.Location)
	require.NotNil(t, fetched.CountryCode)
	assert.Equal(t, "FI", *fetched.CountryCode)
	assert.NotNil(t, fetched.GeocodedAt)

	// Fields outside the selection must not be touched.
	require.NotNil(t, fetched.Latitude)
	assert.InDelta(t, 60.1699, *fetched.Latitude, 1e-9)
}

func TestBulkUpdatePhotosValidation(t *testing.T) {
	ds := setupTestDB(t)

	assert.NoError(t, ds.BulkUpdatePhotos(nil, []string{"location"}))

	p := newTestPhoto("a.jpg", 60.1699, 24.9384, "891126d8a4bffff")
	require.NoError(t, ds.SavePhoto(p))
	assert.Error(t, ds.BulkUpdatePhotos([]*Photo{p}, nil))
}

func TestCountDistinctCellsAndDistribution(t *testing.T) {
	ds := setupTestDB(t)

	// Two photos in one cell, one in another, one already geocoded.
	require.NoError(t, ds.SavePhoto(newTestPhoto("a.jpg", 60.1699, 24.9384, "891126d8a4bffff")))
	require.NoError(t, ds.SavePhoto(newTestPhoto("b.jpg", 60.1701, 24.9386, "891126d8a4bffff")))
	require.NoError(t, ds.SavePhoto(newTestPhoto("c.jpg", 61.4978, 23.7610, "891126d8a6bffff")))

	now := time.Now()
	geocoded := newTestPhoto("d.jpg", 62.2426, 25.7473, "891126d8a8bffff")
	geocoded.GeocodedAt = &now
	require.NoError(t, ds.SavePhoto(geocoded))

	count, err := ds.CountDistinctCells(9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = ds.CountDistinctCells(7)
	assert.Error(t, err)

	distribution, err := ds.CellDistribution(9, 10)
	require.NoError(t, err)
	require.Len(t, distribution, 2)
	assert.Equal(t, "891126d8a4bffff", distribution[0].Cell)
	assert.Equal(t, int64(2), distribution[0].PhotoCount)
	assert.Equal(t, int64(1), distribution[1].PhotoCount)
}
