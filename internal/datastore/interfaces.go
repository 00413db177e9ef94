// interfaces.go: this code defines the interface for the catalog database operations
package datastore

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/errors"
)

// ErrPhotoNotFound is returned when no catalog record exists for a path.
var ErrPhotoNotFound = errors.Newf("photo not found").
	Component("datastore").
	Category(errors.CategoryNotFound).
	Build()

// Interface abstracts the underlying database implementation and defines the
// operations the catalog supports.
type Interface interface {
	Open() error
	Close() error

	// GetPhotoByPath looks a record up by its unique source path. Returns
	// ErrPhotoNotFound when no record exists.
	GetPhotoByPath(sourcePath string) (*Photo, error)

	// SavePhoto inserts or updates a record. Uniqueness on source_path is
	// enforced by the database: saving an unseen record whose path already
	// exists updates that row instead of creating a duplicate.
	SavePhoto(photo *Photo) error

	// GetPhotosForGeocoding returns photos with coordinates that have not
	// been geocoded yet, or all photos with coordinates when recalculate
	// is set.
	GetPhotosForGeocoding(recalculate bool) ([]Photo, error)

	// BulkUpdatePhotos updates only the named fields of every given photo
	// in one transaction.
	BulkUpdatePhotos(photos []*Photo, fields []string) error

	CountPhotos() (int64, error)
	CountPhotosNeedingGeocoding() (int64, error)

	// CountDistinctCells counts distinct non-null spatial cells at the
	// given resolution among photos needing geocoding.
	CountDistinctCells(resolution int) (int64, error)

	// CellDistribution returns the most populated spatial cells at the
	// given resolution among photos needing geocoding.
	CellDistribution(resolution, limit int) ([]CellCount, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// GetPhotoByPath retrieves a photo record by its unique source path.
func (ds *DataStore) GetPhotoByPath(sourcePath string) (*Photo, error) {
	var photo Photo
	err := ds.DB.Where("source_path = ?", sourcePath).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_photo_by_path").
			Context("source_path", sourcePath).
			Build()
	}
	return &photo, nil
}

// SavePhoto upserts a photo record keyed by source path.
func (ds *DataStore) SavePhoto(photo *Photo) error {
	if photo.SourcePath == "" {
		return errors.Newf("source path cannot be empty").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	var err error
	if photo.ID != 0 {
		// Known record, full update
		err = ds.DB.Save(photo).Error
	} else {
		// New record; the conflict clause keeps concurrent or repeated
		// ingestion of the same path from creating a duplicate row.
		err = ds.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_path"}},
			UpdateAll: true,
		}).Create(photo).Error
	}

	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_photo").
			Context("source_path", photo.SourcePath).
			Build()
	}
	return nil
}

// photosNeedingGeocoding scopes a query to photos with coordinates that have
// no enrichment yet.
func photosNeedingGeocoding(db *gorm.DB) *gorm.DB {
	return db.Model(&Photo{}).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("geocoded_at IS NULL")
}

// GetPhotosForGeocoding returns the photos the enrichment job should process.
func (ds *DataStore) GetPhotosForGeocoding(recalculate bool) ([]Photo, error) {
	query := ds.DB.Model(&Photo{}).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	if !recalculate {
		query = query.Where("geocoded_at IS NULL")
	}

	var photos []Photo
	if err := query.Find(&photos).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_photos_for_geocoding").
			Build()
	}
	return photos, nil
}

// BulkUpdatePhotos updates the named fields of each photo in one transaction.
func (ds *DataStore) BulkUpdatePhotos(photos []*Photo, fields []string) error {
	if len(photos) == 0 {
		return nil
	}
	if len(fields) == 0 {
		return errors.Newf("no fields given for bulk update").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		for _, photo := range photos {
			if err := tx.Model(photo).Select(fields).Updates(photo).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "bulk_update_photos").
			Context("photos", len(photos)).
			Build()
	}
	return nil
}

// CountPhotos returns the total number of catalog records.
func (ds *DataStore) CountPhotos() (int64, error) {
	var count int64
	if err := ds.DB.Model(&Photo{}).Count(&count).Error; err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_photos").
			Build()
	}
	return count, nil
}

// CountPhotosNeedingGeocoding returns how many photos have coordinates but
// no enrichment.
func (ds *DataStore) CountPhotosNeedingGeocoding() (int64, error) {
	var count int64
	if err := photosNeedingGeocoding(ds.DB).Count(&count).Error; err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_photos_needing_geocoding").
			Build()
	}
	return count, nil
}

// CountDistinctCells counts distinct spatial cells at the given resolution
// among photos needing geocoding.
func (ds *DataStore) CountDistinctCells(resolution int) (int64, error) {
	column, ok := cellColumn[resolution]
	if !ok {
		return 0, errors.Newf("unsupported spatial resolution: %d", resolution).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	var count int64
	err := photosNeedingGeocoding(ds.DB).
		Where(column + " IS NOT NULL").
		Distinct(column).
		Count(&count).Error
	if err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_distinct_cells").
			Context("resolution", resolution).
			Build()
	}
	return count, nil
}

// CellDistribution returns the most populated spatial cells at the given
// resolution among photos needing geocoding, ordered by photo count.
func (ds *DataStore) CellDistribution(resolution, limit int) ([]CellCount, error) {
	column, ok := cellColumn[resolution]
	if !ok {
		return nil, errors.Newf("unsupported spatial resolution: %d", resolution).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	var rows []CellCount
	err := photosNeedingGeocoding(ds.DB).
		Select(column + " AS cell, COUNT(id) AS photo_count").
		Where(column + " IS NOT NULL").
		Group(column).
		Order("photo_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "cell_distribution").
			Context("resolution", resolution).
			Build()
	}
	return rows, nil
}
