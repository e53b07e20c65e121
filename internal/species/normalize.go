package species

import (
	"strconv"
	"strings"
)

// NormalizeOptional trims a string field and returns nil when nothing
// remains. Used for all optional string fields.
func NormalizeOptional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// PopulationFromString parses free-text numeric input. Empty or non-numeric
// input yields nil rather than an error, matching the optional nature of the
// field. Fractional values are preserved so validation can reject them.
func PopulationFromString(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// Normalize produces the canonical form of a raw record: string fields are
// trimmed, empty optional fields become absent, and the scientific name is
// trimmed but kept even when empty so validation can report it as missing.
// Normalization is idempotent.
func Normalize(raw RawRecord) RawRecord {
	normalized := RawRecord{
		ScientificName:  strings.TrimSpace(raw.ScientificName),
		Kingdom:         raw.Kingdom,
		TotalPopulation: raw.TotalPopulation,
	}
	if v := NormalizeOptional(raw.CommonName); v != nil {
		normalized.CommonName = *v
	}
	if v := NormalizeOptional(raw.Image); v != nil {
		normalized.Image = *v
	}
	if v := NormalizeOptional(raw.Description); v != nil {
		normalized.Description = *v
	}
	return normalized
}
