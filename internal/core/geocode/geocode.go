// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package geocode manages the immutable geographic reference data.

Every attribute observation joins to a geo code: the canonical identifier for
a US state or county, carrying its FIPS code, display name, and postal
abbreviation. The package's central operation is Resolve — the fuzzy lookup
that turns a free-text label from an uploaded spreadsheet ("06075",
"San Francisco", "CA") into a canonical code.
*/
package geocode

import "strings"

// Level is the geographic granularity of a code.
type Level string

const (
	LevelState  Level = "state"
	LevelCounty Level = "county"
)

// UnknownID is the sentinel geo-code identifier assigned to attribute
// records whose label could not be resolved. Rows carrying it never pass
// the ingestion validation gate.
const UnknownID int64 = 0

// GeoCode identifies a geographic region. Reference data, never mutated.
type GeoCode struct {
	ID           int64  `json:"geo_code_id"`
	FIPSCode     string `json:"fips_code"`
	Name         string `json:"geo_name"`
	Abbreviation string `json:"geo_abbreviation"`
	Level        Level  `json:"geographic_level"`
}

// NormalizeLabel canonicalizes a free-text geographic label for matching:
// surrounding whitespace is dropped and the comparison is case-insensitive.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Matches reports whether the label resolves to this code under the
// fuzzy-match rule: equality against FIPS code, name, or abbreviation,
// case-insensitively.
func (g GeoCode) Matches(label string) bool {
	normalized := NormalizeLabel(label)
	if normalized == "" {
		return false
	}
	return normalized == strings.ToLower(g.FIPSCode) ||
		normalized == strings.ToLower(g.Name) ||
		normalized == strings.ToLower(g.Abbreviation)
}
