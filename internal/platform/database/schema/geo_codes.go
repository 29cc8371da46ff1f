package schema

// GeoCodesTable represents the 'geo_codes' reference table
type GeoCodesTable struct {
	Table           string
	ID              string
	FIPSCode        string
	Name            string
	Abbreviation    string
	GeographicLevel string
}

// GeoCodes is the schema definition for geo_codes
var GeoCodes = GeoCodesTable{
	Table:           "geo_codes",
	ID:              "geo_code_id",
	FIPSCode:        "fips_code",
	Name:            "geo_name",
	Abbreviation:    "geo_abbreviation",
	GeographicLevel: "geographic_level",
}
