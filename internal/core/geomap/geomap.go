// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package geomap defines the map domain: user-built choropleth visualizations.

A map pairs one or two dataset attributes with hex color scales over a
geographic region, remembers its viewport (zoom and center), and carries an
optional thumbnail snapshot for listings. Maps follow the same
uniqueness-preserving save protocol as datasets, keyed on (title, owner).
*/
package geomap

import "time"

// # Core Entity

// Map is a saved visualization. The primary attribute drives the color
// scale; the optional secondary attribute produces a bivariate overlay.
type Map struct {
	ID      string  `json:"id"`
	OwnerID *string `json:"owner_id,omitempty"` // nil after owner account removal
	Title   string  `json:"title"`

	// # Primary Layer
	PrimaryDatasetID string `json:"primary_dataset_id"`
	AttributeName1   string `json:"attribute_name_1"`
	AttributeYear1   *int   `json:"attribute_year_1,omitempty"` // nil selects undated observations
	HexColor1        string `json:"hex_color_1"`

	// # Secondary Layer (optional)
	SecondaryDatasetID *string `json:"secondary_dataset_id,omitempty"`
	AttributeName2     *string `json:"attribute_name_2,omitempty"`
	AttributeYear2     *int    `json:"attribute_year_2,omitempty"`
	HexColor2          *string `json:"hex_color_2,omitempty"`

	// # Viewport
	ZoomLevel         float64 `json:"zoom_level"`
	CenterCoordinates string  `json:"center_coordinates"` // "lat,lng"

	IsPublic     bool    `json:"is_public"`
	ThumbnailKey *string `json:"-"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"` // derived from ThumbnailKey

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// # Derived Metrics
	// Counted from join tables at read time, never stored.
	FavoriteCount     int `json:"favorite_count"`
	ViewCount         int `json:"view_count,omitempty"`
	DistinctViewCount int `json:"distinct_view_count,omitempty"`
}

// HasSecondaryLayer reports whether the map defines a bivariate overlay.
func (m *Map) HasSecondaryLayer() bool {
	return m.SecondaryDatasetID != nil && m.AttributeName2 != nil
}

// Listing is the browse view: the viewer's own maps, the ones they
// favorited, and the public gallery. Buckets are not exclusive.
type Listing struct {
	Mine      []*Map `json:"mine"`
	Favorites []*Map `json:"favorites"`
	Public    []*Map `json:"public"`
}

// # Field Identifiers

const (
	FieldTitle             = "title"
	FieldPrimaryDatasetID  = "primary_dataset_id"
	FieldAttributeName1    = "attribute_name_1"
	FieldAttributeYear1    = "attribute_year_1"
	FieldHexColor1         = "hex_color_1"
	FieldAttributeName2    = "attribute_name_2"
	FieldAttributeYear2    = "attribute_year_2"
	FieldHexColor2         = "hex_color_2"
	FieldCenterCoordinates = "center_coordinates"
	FieldThumbnail         = "thumbnail"
)
