package species

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Form field names used as keys in FieldErrors and by API responses.
const (
	FieldScientificName  = "scientific_name"
	FieldCommonName      = "common_name"
	FieldKingdom         = "kingdom"
	FieldTotalPopulation = "total_population"
	FieldImage           = "image"
	FieldDescription     = "description"
)

// FieldErrors maps field names to human-readable violation reasons.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, reason := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, reason))
	}
	return strings.Join(parts, "; ")
}

// Validate normalizes a raw record and checks every field independently,
// returning either the validated record or all violations at once. It is
// pure and safe to call on every field change.
func Validate(raw RawRecord) (*Record, FieldErrors) {
	normalized := Normalize(raw)
	violations := FieldErrors{}

	if normalized.ScientificName == "" {
		violations[FieldScientificName] = "Scientific name is required."
	}

	if !IsValidKingdom(normalized.Kingdom) {
		violations[FieldKingdom] = fmt.Sprintf("Kingdom must be one of %s.", strings.Join(Kingdoms, ", "))
	}

	var population *int64
	if normalized.TotalPopulation != nil {
		value := *normalized.TotalPopulation
		switch {
		case value != math.Trunc(value):
			violations[FieldTotalPopulation] = "Total population must be a whole number."
		case value < 1:
			violations[FieldTotalPopulation] = "Total population must be at least 1."
		default:
			v := int64(value)
			population = &v
		}
	}

	image := NormalizeOptional(normalized.Image)
	if image != nil && !isValidURL(*image) {
		violations[FieldImage] = "Image must be a valid URL."
	}

	if len(violations) > 0 {
		return nil, violations
	}

	return &Record{
		ScientificName:  normalized.ScientificName,
		CommonName:      NormalizeOptional(normalized.CommonName),
		Kingdom:         normalized.Kingdom,
		TotalPopulation: population,
		Image:           image,
		Description:     NormalizeOptional(normalized.Description),
	}, nil
}

// isValidURL requires an absolute URL with a scheme and host
func isValidURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
