package datastore

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings Settings
}

// Open sets up the SQLite database connection and runs migrations
func (store *SQLiteStore) Open() error {
	db, err := gorm.Open(sqlite.Open(store.Settings.SQLite.Path), &gorm.Config{
		Logger: createGormLogger(store.Logger, store.Settings.Debug),
	})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", store.Settings.SQLite.Path, store.getDbLogger("sqlite"))
}

// Close is a no-op for SQLite, the file handle is released with the process
func (store *SQLiteStore) Close() error {
	return nil
}
