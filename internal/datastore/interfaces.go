package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/biodexapp/biodex/internal/errors"
)

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the caller.
var ErrNotFound = errors.Newf("record not found").Component("datastore").Category(errors.CategoryNotFound).Build()

// Interface defines the operations the application needs from a datastore
type Interface interface {
	Open() error
	Close() error

	ListSpecies(ctx context.Context) ([]Species, error)
	GetSpecies(ctx context.Context, id uint) (*Species, error)
	CreateSpecies(ctx context.Context, species *Species) error
	UpdateSpecies(ctx context.Context, id uint, fields map[string]any) error
	DeleteSpecies(ctx context.Context, id uint) error

	ListComments(ctx context.Context, speciesID uint) ([]Comment, error)
	CreateComment(ctx context.Context, comment *Comment) error
	DeleteComment(ctx context.Context, id uint, userID string) error

	ListProfiles(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, profile *Profile) error
}

// DataStore implements the Interface using GORM. SQLiteStore and MySQLStore
// embed it and supply Open/Close.
type DataStore struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// New creates a datastore for the enabled backend in settings.
func New(settings Settings, logger *slog.Logger) (Interface, error) {
	switch {
	case settings.SQLite.Enabled:
		return &SQLiteStore{DataStore: DataStore{Logger: logger}, Settings: settings}, nil
	case settings.MySQL.Enabled:
		return &MySQLStore{DataStore: DataStore{Logger: logger}, Settings: settings}, nil
	default:
		return nil, errors.Newf("no datastore backend enabled").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// Settings selects and configures the datastore backend. It mirrors the
// Output section of the application configuration so the package does not
// depend on conf.
type Settings struct {
	Debug  bool
	SQLite struct {
		Enabled bool
		Path    string
	}
	MySQL struct {
		Enabled  bool
		Username string
		Password string
		Host     string
		Port     string
		Database string
	}
}

// newDatabaseError wraps a gorm error with common datastore fields, mapping
// gorm.ErrRecordNotFound to ErrNotFound.
func newDatabaseError(err error, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

func (ds *DataStore) checkConnection() error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryState).
			Build()
	}
	return nil
}

// ListSpecies returns all species ordered by scientific name ascending
func (ds *DataStore) ListSpecies(ctx context.Context) ([]Species, error) {
	if err := ds.checkConnection(); err != nil {
		return nil, err
	}

	var species []Species
	if err := ds.DB.WithContext(ctx).Order("scientific_name ASC").Find(&species).Error; err != nil {
		return nil, newDatabaseError(err, "list_species")
	}
	return species, nil
}

// GetSpecies returns a single species record by id
func (ds *DataStore) GetSpecies(ctx context.Context, id uint) (*Species, error) {
	if err := ds.checkConnection(); err != nil {
		return nil, err
	}

	var species Species
	if err := ds.DB.WithContext(ctx).First(&species, id).Error; err != nil {
		return nil, newDatabaseError(err, "get_species")
	}
	return &species, nil
}

// CreateSpecies inserts a new species record
func (ds *DataStore) CreateSpecies(ctx context.Context, species *Species) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	if err := ds.DB.WithContext(ctx).Create(species).Error; err != nil {
		return newDatabaseError(err, "create_species")
	}
	return nil
}

// UpdateSpecies updates the given fields of a species record. The author
// column is never part of fields, record ownership is immutable.
func (ds *DataStore) UpdateSpecies(ctx context.Context, id uint, fields map[string]any) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	result := ds.DB.WithContext(ctx).Model(&Species{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return newDatabaseError(result.Error, "update_species")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSpecies removes a species record and its comments
func (ds *DataStore) DeleteSpecies(ctx context.Context, id uint) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	return ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Cascade manually, SQLite builds may run without foreign key enforcement
		if err := tx.Where("species_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return newDatabaseError(err, "delete_species_comments")
		}
		result := tx.Delete(&Species{}, id)
		if result.Error != nil {
			return newDatabaseError(result.Error, "delete_species")
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListComments returns the comments for a species, newest first
func (ds *DataStore) ListComments(ctx context.Context, speciesID uint) ([]Comment, error) {
	if err := ds.checkConnection(); err != nil {
		return nil, err
	}

	var comments []Comment
	err := ds.DB.WithContext(ctx).
		Where("species_id = ?", speciesID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, newDatabaseError(err, "list_comments")
	}
	return comments, nil
}

// CreateComment inserts a new comment
func (ds *DataStore) CreateComment(ctx context.Context, comment *Comment) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	if err := ds.DB.WithContext(ctx).Create(comment).Error; err != nil {
		return newDatabaseError(err, "create_comment")
	}
	return nil
}

// DeleteComment removes a comment, but only when it belongs to userID.
// Deleting someone else's comment reports ErrNotFound rather than revealing
// the comment exists.
func (ds *DataStore) DeleteComment(ctx context.Context, id uint, userID string) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	result := ds.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Comment{})
	if result.Error != nil {
		return newDatabaseError(result.Error, "delete_comment")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProfiles returns all profiles ordered by display name descending
func (ds *DataStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	if err := ds.checkConnection(); err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := ds.DB.WithContext(ctx).Order("display_name DESC").Find(&profiles).Error; err != nil {
		return nil, newDatabaseError(err, "list_profiles")
	}
	return profiles, nil
}

// GetProfile returns a profile by id
func (ds *DataStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	if err := ds.checkConnection(); err != nil {
		return nil, err
	}

	var profile Profile
	if err := ds.DB.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, newDatabaseError(err, "get_profile")
	}
	return &profile, nil
}

// GetProfileByEmail returns a profile by email address
func (ds *DataStore) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	if err := ds.checkConnection(); err != nil {
		return nil, err
	}

	var profile Profile
	if err := ds.DB.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, newDatabaseError(err, "get_profile_by_email")
	}
	return &profile, nil
}

// CreateProfile inserts a new profile
func (ds *DataStore) CreateProfile(ctx context.Context, profile *Profile) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	if err := ds.DB.WithContext(ctx).Create(profile).Error; err != nil {
		return newDatabaseError(err, "create_profile")
	}
	return nil
}

// UpdateProfile saves changes to an existing profile
func (ds *DataStore) UpdateProfile(ctx context.Context, profile *Profile) error {
	if err := ds.checkConnection(); err != nil {
		return err
	}

	if err := ds.DB.WithContext(ctx).Save(profile).Error; err != nil {
		return newDatabaseError(err, "update_profile")
	}
	return nil
}

// getDbLogger returns a logger scoped to the given backend name
func (ds *DataStore) getDbLogger(backend string) *slog.Logger {
	if ds.Logger == nil {
		return nil
	}
	return ds.Logger.With("backend", backend)
}

func mysqlDSN(s *Settings) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		s.MySQL.Username, s.MySQL.Password,
		s.MySQL.Host, s.MySQL.Port,
		s.MySQL.Database)
}
