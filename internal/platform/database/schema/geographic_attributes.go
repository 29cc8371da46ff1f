package schema

// GeographicAttributesTable represents the 'geographic_attributes' table
type GeographicAttributesTable struct {
	Table          string
	ID             string
	GeoCodeID      string
	DatasetID      string
	Name           string
	Value          string
	ValueType      string
	Year           string
	RelativeWeight string
	DeletedAt      string

	// ObservationConstraint is the unique index over
	// (geo_code_id, attribute_name, attribute_year, dataset_id).
	ObservationConstraint string
}

// GeographicAttributes is the schema definition for geographic_attributes
var GeographicAttributes = GeographicAttributesTable{
	Table:          "geographic_attributes",
	ID:             "geographic_attribute_id",
	GeoCodeID:      "geo_code_id",
	DatasetID:      "dataset_id",
	Name:           "attribute_name",
	Value:          "attribute_value",
	ValueType:      "attribute_value_type",
	Year:           "attribute_year",
	RelativeWeight: "attribute_relative_weight",
	DeletedAt:      "deleted_at",

	ObservationConstraint: "geographic_attributes_observation_key",
}
