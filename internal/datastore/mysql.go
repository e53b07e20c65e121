package datastore

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	Settings Settings
}

// Open sets up the MySQL database connection and runs migrations
func (store *MySQLStore) Open() error {
	mysqlLogger := store.getDbLogger("mysql")

	dsn := mysqlDSN(&store.Settings)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: createGormLogger(store.Logger, store.Settings.Debug),
	})
	if err != nil {
		if mysqlLogger != nil {
			mysqlLogger.Error("Failed to open MySQL database",
				"host", store.Settings.MySQL.Host,
				"port", store.Settings.MySQL.Port,
				"database", store.Settings.MySQL.Database,
				"error", err)
		} else {
			log.Printf("Failed to open MySQL database: %v\n", err)
		}
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", store.Settings.MySQL.Database, mysqlLogger)
}

// Close releases the MySQL connection pool
func (store *MySQLStore) Close() error {
	mysqlLogger := store.getDbLogger("mysql")

	if store.DB == nil {
		if mysqlLogger != nil {
			mysqlLogger.Error("Database connection is not initialized")
		}
		return fmt.Errorf("database connection is not initialized")
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		if mysqlLogger != nil {
			mysqlLogger.Error("Failed to retrieve generic DB object", "error", err)
		}
		return err
	}

	if err := sqlDB.Close(); err != nil {
		if mysqlLogger != nil {
			mysqlLogger.Error("Failed to close MySQL database", "error", err)
		}
		return err
	}

	if mysqlLogger != nil && store.Settings.Debug {
		mysqlLogger.Debug("MySQL database connection closed successfully")
	}
	return nil
}
