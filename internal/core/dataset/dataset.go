// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package dataset defines the geographic dataset domain.

A dataset is a named collection of attribute observations: one numeric value
per (region, attribute name, year) tuple, joined to the geo-code reference
table. Users upload observations in bulk from spreadsheets, browse datasets
shared by the community, and attach them to maps.

Core Responsibility:

  - Catalogue: Dataset metadata (name, source organization, geographic level)
    with the uniqueness-preserving save protocol on (name, owner).
  - Observations: Bulk ingestion with per-row screening and soft deletion.
  - Aggregation: Distinct names, year lists, count-decorated summaries, and
    popularity ranking, all derived at read time.
*/
package dataset

import (
	"time"

	"github.com/chorostat/chorostat/internal/core/geocode"
)

// # Domain Enums

// ValueType describes how an attribute value should be interpreted and
// rendered on a color scale.
type ValueType string

const (
	// ValueTypePercent is a proportion in [0, 100]. The default for
	// ingested observations that do not state a type.
	ValueTypePercent ValueType = "percent"

	// ValueTypeCount is an absolute quantity.
	ValueTypeCount ValueType = "count"
)

// IsValid reports whether v is a recognised [ValueType] value.
func (v ValueType) IsValid() bool {
	switch v {
	case ValueTypePercent, ValueTypeCount:
		return true
	}
	return false
}

// RelativeWeight is an optional qualitative grade attached to an observation.
type RelativeWeight string

const (
	WeightHigh   RelativeWeight = "high"
	WeightMedium RelativeWeight = "medium"
	WeightLow    RelativeWeight = "low"
)

// # Core Entities

// Dataset is the aggregate root of the domain. It owns a collection of
// [Attribute] observations and carries the metadata shown in discovery
// listings.
type Dataset struct {
	ID               string        `json:"id"`
	OwnerID          *string       `json:"owner_id,omitempty"` // nil after owner account removal
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Organization     string        `json:"organization"`
	SourceURL        string        `json:"source_url"`
	GeographicLevel  geocode.Level `json:"geographic_level"`
	DisplayByDefault bool          `json:"display_by_default"` // curated: shown to every visitor
	IsPublic         bool          `json:"is_public"`
	CreatedAt        time.Time     `json:"created_at"`

	// # Derived Metrics
	// Counted from join tables at read time, never stored.
	FavoriteCount     int `json:"favorite_count"`
	ViewCount         int `json:"view_count,omitempty"`
	DistinctViewCount int `json:"distinct_view_count,omitempty"`
}

// Attribute is a single observation: one value for one region, one attribute
// name, and optionally one year.
type Attribute struct {
	ID             string          `json:"id"`
	DatasetID      string          `json:"dataset_id"`
	GeoCodeID      int64           `json:"geo_code_id"`
	Name           string          `json:"name"`
	Value          float64         `json:"value"`
	ValueType      ValueType       `json:"value_type"`
	Year           *int            `json:"year,omitempty"` // nil = undated observation
	RelativeWeight *RelativeWeight `json:"relative_weight,omitempty"`
	DeletedAt      *time.Time      `json:"-"` // nil = active; non-nil = soft-deleted
}

// # Aggregation Projections

// NameRef pairs a distinct attribute name with its source dataset, the shape
// consumed by the map builder's attribute picker.
type NameRef struct {
	Name      string `json:"name"`
	DatasetID string `json:"dataset_id"`
}

// SummaryRow is one group of the count-decorated summary: an attribute name
// and year with the number of observations carrying them, projected with the
// source dataset's descriptive fields.
type SummaryRow struct {
	AttributeName      string `json:"attribute_name"`
	AttributeYear      *int   `json:"attribute_year,omitempty"`
	AttributeCount     int    `json:"attribute_count"`
	SourceID           string `json:"source_id"`
	SourceName         string `json:"source_name"`
	SourceDescription  string `json:"source_description"`
	SourceOrganization string `json:"source_organization"`
	SourceURL          string `json:"source_url"`
}

// LevelGroup splits a dataset slice by geographic granularity.
type LevelGroup struct {
	State  []*Dataset `json:"state"`
	County []*Dataset `json:"county"`
}

// Listing is the browse view: the viewer's own datasets, the ones they
// favorited, and the curated defaults, each split by level. Buckets are not
// exclusive; a favorited dataset the viewer owns appears in both.
type Listing struct {
	Mine      LevelGroup `json:"mine"`
	Favorites LevelGroup `json:"favorites"`
	Default   LevelGroup `json:"default"`
}

// # Field Identifiers

// Field names for validation error reporting.
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldOrganization    = "organization"
	FieldSourceURL       = "source_url"
	FieldGeographicLevel = "geographic_level"
	FieldAttributeName   = "attribute_name"
	FieldAttributeYear   = "attribute_year"
	FieldValueType       = "value_type"
)
