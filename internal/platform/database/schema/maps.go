package schema

// MapsTable represents the 'maps' table
type MapsTable struct {
	Table              string
	ID                 string
	PrimaryDatasetID   string
	SecondaryDatasetID string
	AttributeName1     string
	AttributeName2     string
	AttributeYear1     string
	AttributeYear2     string
	HexColor1          string
	HexColor2          string
	Title              string
	OwnerID            string
	IsPublic           string
	ZoomLevel          string
	CenterCoordinates  string
	ThumbnailKey       string
	CreatedAt          string
	UpdatedAt          string

	// TitleOwnerConstraint is the unique index behind the
	// uniqueness-preserving save protocol for maps.
	TitleOwnerConstraint string
}

// Maps is the schema definition for maps
var Maps = MapsTable{
	Table:              "maps",
	ID:                 "map_id",
	PrimaryDatasetID:   "primary_dataset_id",
	SecondaryDatasetID: "secondary_dataset_id",
	AttributeName1:     "attribute_name_1",
	AttributeName2:     "attribute_name_2",
	AttributeYear1:     "attribute_year_1",
	AttributeYear2:     "attribute_year_2",
	HexColor1:          "hex_color_1",
	HexColor2:          "hex_color_2",
	Title:              "title",
	OwnerID:            "owner_id",
	IsPublic:           "is_public",
	ZoomLevel:          "zoom_level",
	CenterCoordinates:  "center_coordinates",
	ThumbnailKey:       "map_thumbnail_key",
	CreatedAt:          "created_at",
	UpdatedAt:          "updated_at",

	TitleOwnerConstraint: "maps_title_owner_key",
}
