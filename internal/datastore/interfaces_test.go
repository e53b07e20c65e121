package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestStore opens an in-memory SQLite database with the full schema
func newTestStore(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, performAutoMigration(db, false, "SQLite", ":memory:", nil))

	return &DataStore{DB: db}
}

func strPtr(s string) *string { return &s }

func seedProfile(t *testing.T, ds *DataStore, id, email string) {
	t.Helper()
	require.NoError(t, ds.CreateProfile(context.Background(), &Profile{
		ID:           id,
		Email:        email,
		DisplayName:  "User " + id,
		PasswordHash: "x",
	}))
}

func TestListSpecies_OrderedByScientificName(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, ds, "u1", "u1@example.com")

	for _, name := range []string{"Quercus robur", "Cavia porcellus", "Panthera leo"} {
		require.NoError(t, ds.CreateSpecies(ctx, &Species{
			ScientificName: name,
			Kingdom:        KingdomAnimalia,
			Author:         "u1",
		}))
	}

	species, err := ds.ListSpecies(ctx)
	require.NoError(t, err)
	require.Len(t, species, 3)
	assert.Equal(t, "Cavia porcellus", species[0].ScientificName)
	assert.Equal(t, "Panthera leo", species[1].ScientificName)
	assert.Equal(t, "Quercus robur", species[2].ScientificName)
}

func TestGetSpecies_NotFound(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	_, err := ds.GetSpecies(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSpecies_FullFieldReplacement(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, ds, "u1", "u1@example.com")

	record := &Species{
		ScientificName: "Quercus robur",
		CommonName:     strPtr("English oak"),
		Kingdom:        KingdomPlantae,
		Author:         "u1",
	}
	require.NoError(t, ds.CreateSpecies(ctx, record))

	err := ds.UpdateSpecies(ctx, record.ID, map[string]any{
		"scientific_name":  "Quercus robur",
		"common_name":      nil,
		"kingdom":          KingdomPlantae,
		"total_population": int64(1200),
		"image":            nil,
		"description":      "A large deciduous tree.",
	})
	require.NoError(t, err)

	got, err := ds.GetSpecies(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CommonName)
	require.NotNil(t, got.TotalPopulation)
	assert.EqualValues(t, 1200, *got.TotalPopulation)
	require.NotNil(t, got.Description)
	assert.Equal(t, "A large deciduous tree.", *got.Description)
	assert.Equal(t, "u1", got.Author, "author must not change on update")
}

func TestUpdateSpecies_MissingRecord(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	err := ds.UpdateSpecies(context.Background(), 42, map[string]any{"kingdom": KingdomFungi})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSpecies_RemovesComments(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, ds, "u1", "u1@example.com")

	record := &Species{ScientificName: "Cavia porcellus", Kingdom: KingdomAnimalia, Author: "u1"}
	require.NoError(t, ds.CreateSpecies(ctx, record))
	require.NoError(t, ds.CreateComment(ctx, &Comment{SpeciesID: record.ID, UserID: "u1", Comment: "cute"}))

	require.NoError(t, ds.DeleteSpecies(ctx, record.ID))

	comments, err := ds.ListComments(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = ds.GetSpecies(ctx, record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteComment_OnlyOwn(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, ds, "u1", "u1@example.com")
	seedProfile(t, ds, "u2", "u2@example.com")

	record := &Species{ScientificName: "Cavia porcellus", Kingdom: KingdomAnimalia, Author: "u1"}
	require.NoError(t, ds.CreateSpecies(ctx, record))

	comment := &Comment{SpeciesID: record.ID, UserID: "u1", Comment: "mine"}
	require.NoError(t, ds.CreateComment(ctx, comment))

	// Another user cannot delete it
	assert.ErrorIs(t, ds.DeleteComment(ctx, comment.ID, "u2"), ErrNotFound)

	// The author can
	require.NoError(t, ds.DeleteComment(ctx, comment.ID, "u1"))
	comments, err := ds.ListComments(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestListProfiles_OrderedByDisplayNameDesc(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ds.CreateProfile(ctx, &Profile{ID: "a", Email: "a@example.com", DisplayName: "Alice", PasswordHash: "x"}))
	require.NoError(t, ds.CreateProfile(ctx, &Profile{ID: "b", Email: "b@example.com", DisplayName: "Bob", PasswordHash: "x"}))

	profiles, err := ds.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Bob", profiles[0].DisplayName)
	assert.Equal(t, "Alice", profiles[1].DisplayName)
}

func TestGetProfileByEmail(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, ds, "u1", "u1@example.com")

	profile, err := ds.GetProfileByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)

	_, err = ds.GetProfileByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
