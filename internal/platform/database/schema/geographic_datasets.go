package schema

// GeographicDatasetsTable represents the 'geographic_datasets' table
type GeographicDatasetsTable struct {
	Table            string
	ID               string
	OwnerID          string
	Name             string
	Description      string
	Organization     string
	SourceURL        string
	GeographicLevel  string
	DisplayByDefault string
	IsPublic         string
	CreatedAt        string

	// NameOwnerConstraint is the unique index behind the
	// uniqueness-preserving save protocol for datasets.
	NameOwnerConstraint string
}

// GeographicDatasets is the schema definition for geographic_datasets
var GeographicDatasets = GeographicDatasetsTable{
	Table:            "geographic_datasets",
	ID:               "geographic_dataset_id",
	OwnerID:          "owner_id",
	Name:             "name",
	Description:      "description",
	Organization:     "organization",
	SourceURL:        "source_url",
	GeographicLevel:  "geographic_level",
	DisplayByDefault: "display_by_default",
	IsPublic:         "is_public",
	CreatedAt:        "created_at",

	NameOwnerConstraint: "geographic_datasets_name_owner_key",
}
