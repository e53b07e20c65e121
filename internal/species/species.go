// Package species defines the species record schema: the closed kingdom set,
// field normalization, and the validation rules shared by the add and edit
// flows.
package species

import "github.com/biodexapp/biodex/internal/datastore"

// Kingdoms is the closed set of accepted taxonomic kingdoms, in the order
// they are presented to users.
var Kingdoms = []string{
	datastore.KingdomAnimalia,
	datastore.KingdomPlantae,
	datastore.KingdomFungi,
	datastore.KingdomProtista,
	datastore.KingdomArchaea,
	datastore.KingdomBacteria,
}

// IsValidKingdom reports whether value is one of the six kingdom literals.
// The match is exact and case-sensitive, no coercion.
func IsValidKingdom(value string) bool {
	for _, k := range Kingdoms {
		if value == k {
			return true
		}
	}
	return false
}

// RawRecord holds user-entered form values before normalization. String
// fields carry whatever the user typed; TotalPopulation is nil when the
// input was empty or non-numeric.
type RawRecord struct {
	ScientificName  string   `json:"scientific_name"`
	CommonName      string   `json:"common_name"`
	Kingdom         string   `json:"kingdom"`
	TotalPopulation *float64 `json:"total_population"`
	Image           string   `json:"image"`
	Description     string   `json:"description"`
}

// Record is a normalized, validated species candidate ready for persistence.
type Record struct {
	ScientificName  string  `json:"scientific_name"`
	CommonName      *string `json:"common_name"`
	Kingdom         string  `json:"kingdom"`
	TotalPopulation *int64  `json:"total_population"`
	Image           *string `json:"image"`
	Description     *string `json:"description"`
}

// Defaults returns the blank form state used when a dialog opens for a new
// record.
func Defaults() RawRecord {
	return RawRecord{Kingdom: datastore.KingdomAnimalia}
}

// RawFromRecord converts a persisted record back into form state, used when
// an edit dialog opens or resets to just-saved values.
func RawFromRecord(rec Record) RawRecord {
	raw := RawRecord{
		ScientificName: rec.ScientificName,
		Kingdom:        rec.Kingdom,
	}
	if rec.CommonName != nil {
		raw.CommonName = *rec.CommonName
	}
	if rec.TotalPopulation != nil {
		population := float64(*rec.TotalPopulation)
		raw.TotalPopulation = &population
	}
	if rec.Image != nil {
		raw.Image = *rec.Image
	}
	if rec.Description != nil {
		raw.Description = *rec.Description
	}
	return raw
}
