package datastore

import (
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tphakala/photoindex-go/internal/logging"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged as a warning.
const DefaultSlowQueryThreshold = 1 * time.Second

var (
	datastoreLogger *slog.Logger
	loggerOnce      sync.Once
)

// getLogger returns the datastore service logger, creating it on first use.
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		datastoreLogger = logging.ForService("datastore")
		if datastoreLogger == nil {
			// logging.Init not called, e.g. in tests
			datastoreLogger = slog.Default().With("service", "datastore")
		}
	})
	return datastoreLogger
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             DefaultSlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// performAutoMigration runs GORM auto-migration for the catalog schema.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()
	migrationLogger := getLogger().With("db_type", dbType)

	if debug {
		migrationLogger.Debug("Starting database migration", "connection", connectionInfo)
	}

	if err := db.AutoMigrate(&Photo{}); err != nil {
		migrationLogger.Error("Database migration failed", "error", err)
		return err
	}

	migrationLogger.Debug("Database migration completed successfully",
		"total_duration", time.Since(migrationStart))

	return nil
}
