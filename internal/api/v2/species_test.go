package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/wikipedia"
)

func TestListSpecies_TruncatesPreview(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-1", "ada@example.com")
	long := strings.Repeat("a", 200)
	env.seedSpecies(t, &datastore.Species{
		ScientificName: "Quercus robur",
		Kingdom:        datastore.KingdomPlantae,
		Description:    strPtr(long),
		Author:         "user-1",
	})
	env.seedSpecies(t, &datastore.Species{
		ScientificName: "Amanita muscaria",
		Kingdom:        datastore.KingdomFungi,
		Description:    strPtr("short"),
		Author:         "user-1",
	})

	rec := env.request(t, http.MethodGet, "/api/v2/species", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeJSON[[]speciesResponse](t, rec)
	require.Len(t, list, 2)
	// Ordered by scientific name
	assert.Equal(t, "Amanita muscaria", list[0].ScientificName)
	assert.Equal(t, "short", list[0].Preview)
	assert.Equal(t, strings.Repeat("a", 150)+"...", list[1].Preview)
}

func TestCreateSpecies_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v2/species",
		`{"scientific_name":"Quercus robur","kingdom":"Plantae"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSpecies_Success(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-1", "ada@example.com")

	rec := env.request(t, http.MethodPost, "/api/v2/species",
		`{"scientific_name":"  Quercus robur  ","common_name":"","kingdom":"Plantae"}`, cookies)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeJSON[datastore.Species](t, rec)
	assert.Equal(t, "Quercus robur", created.ScientificName)
	assert.Nil(t, created.CommonName)
	assert.Equal(t, "user-1", created.Author)
}

func TestCreateSpecies_ReportsAllViolations(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-1", "ada@example.com")

	rec := env.request(t, http.MethodPost, "/api/v2/species",
		`{"scientific_name":"","kingdom":"Mammalia","total_population":0,"image":"not-a-url"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeJSON[map[string]map[string]string](t, rec)
	violations := body["errors"]
	assert.Len(t, violations, 4)
	assert.Contains(t, violations, "scientific_name")
	assert.Contains(t, violations, "kingdom")
	assert.Contains(t, violations, "total_population")
	assert.Contains(t, violations, "image")
}

func TestUpdateSpecies_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-2", "eve@example.com")
	existing := env.seedSpecies(t, &datastore.Species{
		ScientificName: "Quercus robur",
		Kingdom:        datastore.KingdomPlantae,
		Author:         "user-1",
	})

	rec := env.request(t, http.MethodPut, "/api/v2/species/"+itoa(existing.ID),
		`{"scientific_name":"Quercus robur","kingdom":"Plantae"}`, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateSpecies_ReplacesAllFields(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-1", "ada@example.com")
	existing := env.seedSpecies(t, &datastore.Species{
		ScientificName: "Quercus robur",
		CommonName:     strPtr("Oak"),
		Kingdom:        datastore.KingdomPlantae,
		Author:         "user-1",
	})

	rec := env.request(t, http.MethodPut, "/api/v2/species/"+itoa(existing.ID),
		`{"scientific_name":"Quercus robur","common_name":"","kingdom":"Plantae","total_population":1200}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.ds.GetSpecies(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.CommonName, "omitted optional field clears the column")
	require.NotNil(t, updated.TotalPopulation)
	assert.EqualValues(t, 1200, *updated.TotalPopulation)
	assert.Equal(t, "user-1", updated.Author)
}

func TestDeleteSpecies(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-1", "ada@example.com")
	existing := env.seedSpecies(t, &datastore.Species{
		ScientificName: "Quercus robur",
		Kingdom:        datastore.KingdomPlantae,
		Author:         "user-1",
	})

	rec := env.request(t, http.MethodDelete, "/api/v2/species/"+itoa(existing.ID), "", cookies)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodDelete, "/api/v2/species/"+itoa(existing.ID), "", cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookupSpecies_StatusMapping(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.seedProfile(t, "user-1", "ada@example.com")

	env.lookup.err = wikipedia.ErrEmptyQuery
	rec := env.request(t, http.MethodGet, "/api/v2/species/lookup?query=", "", cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.lookup.err = wikipedia.ErrNoMatch
	rec = env.request(t, http.MethodGet, "/api/v2/species/lookup?query=Giant+Panda", "", cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, "No matching article found.", resp.Message)

	env.lookup.err = nil
	env.lookup.result = &wikipedia.LookupResult{
		Title:        "Guinea pig",
		Extract:      "A rodent.",
		ThumbnailURL: "https://upload.wikimedia.org/thumb/guinea_pig.jpg",
	}
	rec = env.request(t, http.MethodGet, "/api/v2/species/lookup?query=guinea+pig", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeJSON[wikipedia.LookupResult](t, rec)
	assert.Equal(t, "Guinea pig", result.Title)
}
