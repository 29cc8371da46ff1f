// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorostat/chorostat/internal/core/dataset"
	"github.com/chorostat/chorostat/internal/core/geocode"
)

func intPtr(v int) *int { return &v }

func observation(name string, year *int) dataset.Attribute {
	return dataset.Attribute{Name: name, Year: year, GeoCodeID: 1}
}

/*
TestDistinctNames verifies deduplication and lexicographic ordering.
*/
func TestDistinctNames(t *testing.T) {
	rows := []dataset.Attribute{
		observation("Unemployment", intPtr(2020)),
		observation("Bachelor Degree", intPtr(2020)),
		observation("Unemployment", intPtr(2021)),
		observation("Median Income", nil),
		observation("Bachelor Degree", intPtr(2019)),
	}

	refs := dataset.DistinctNames("ds-1", rows)

	require.Len(t, refs, 3)
	assert.Equal(t, "Bachelor Degree", refs[0].Name)
	assert.Equal(t, "Median Income", refs[1].Name)
	assert.Equal(t, "Unemployment", refs[2].Name)

	// Every reference carries the source dataset id.
	for _, ref := range refs {
		assert.Equal(t, "ds-1", ref.DatasetID)
	}
}

/*
TestDistinctNames_ExcludesSoftDeleted verifies that soft-deleted rows never
contribute a name.
*/
func TestDistinctNames_ExcludesSoftDeleted(t *testing.T) {
	deletedAt := time.Now()
	deleted := observation("Ghost", intPtr(2020))
	deleted.DeletedAt = &deletedAt

	refs := dataset.DistinctNames("ds-1", []dataset.Attribute{
		deleted,
		observation("Alive", intPtr(2020)),
	})

	require.Len(t, refs, 1)
	assert.Equal(t, "Alive", refs[0].Name)
}

/*
TestYears verifies distinct descending years with undated rows excluded.
*/
func TestYears(t *testing.T) {
	rows := []dataset.Attribute{
		observation("Unemployment", intPtr(2019)),
		observation("Unemployment", intPtr(2021)),
		observation("Unemployment", intPtr(2019)),
		observation("Unemployment", nil),
		observation("Median Income", intPtr(1999)), // different attribute
	}

	years := dataset.Years(rows, "Unemployment")

	assert.Equal(t, []int{2021, 2019}, years)
}

/*
TestYears_EmptyDataset verifies the empty result contract: no rows means an
empty slice, never an error or nil-driven panic.
*/
func TestYears_EmptyDataset(t *testing.T) {
	assert.Empty(t, dataset.Years(nil, "Unemployment"))
}

/*
TestSummarize verifies grouping, counting, and ordering of the summary, and
that undated observations form their own group distinct from year zero.
*/
func TestSummarize(t *testing.T) {
	source := &dataset.Dataset{
		ID:           "ds-1",
		Name:         "Census",
		Description:  "ACS extract",
		Organization: "Census Bureau",
		SourceURL:    "https://census.gov",
	}

	rows := []dataset.Attribute{
		observation("Unemployment", intPtr(2020)),
		observation("Unemployment", intPtr(2020)),
		observation("Unemployment", intPtr(2019)),
		observation("Unemployment", nil),
		observation("Unemployment", intPtr(0)), // literal year zero
		observation("Bachelor Degree", intPtr(2020)),
	}

	summary := dataset.Summarize(source, rows)

	require.Len(t, summary, 5)

	// 1. Names ascending.
	assert.Equal(t, "Bachelor Degree", summary[0].AttributeName)

	// 2. Years ascending within a name; the undated group sorts last and
	// stays separate from year 0.
	require.NotNil(t, summary[1].AttributeYear)
	assert.Equal(t, 0, *summary[1].AttributeYear)
	assert.Equal(t, 2019, *summary[2].AttributeYear)
	assert.Equal(t, 2020, *summary[3].AttributeYear)
	assert.Nil(t, summary[4].AttributeYear)

	// 3. Counts per group.
	assert.Equal(t, 2, summary[3].AttributeCount)
	assert.Equal(t, 1, summary[4].AttributeCount)

	// 4. Source projection on every row.
	for _, row := range summary {
		assert.Equal(t, "ds-1", row.SourceID)
		assert.Equal(t, "Census", row.SourceName)
		assert.Equal(t, "Census Bureau", row.SourceOrganization)
	}
}

/*
TestSummarize_EmptyDataset verifies an empty summary for a dataset without
observations.
*/
func TestSummarize_EmptyDataset(t *testing.T) {
	summary := dataset.Summarize(&dataset.Dataset{ID: "ds-1"}, nil)
	assert.Empty(t, summary)
}

/*
TestFilterRows verifies name and year narrowing, including the 0-keeps-undated
convention and that empty filters are pass-through.
*/
func TestFilterRows(t *testing.T) {
	rows := []dataset.Attribute{
		observation("Unemployment", intPtr(2020)),
		observation("Unemployment", intPtr(2019)),
		observation("Unemployment", nil),
		observation("Bachelor Degree", intPtr(2020)),
	}

	// 1. No filters: same slice back.
	assert.Len(t, dataset.FilterRows(rows, nil, nil), 4)

	// 2. Name filter only.
	byName := dataset.FilterRows(rows, []string{"Bachelor Degree"}, nil)
	require.Len(t, byName, 1)
	assert.Equal(t, "Bachelor Degree", byName[0].Name)

	// 3. Year filter only; 0 selects the undated row.
	byYear := dataset.FilterRows(rows, nil, []int{2020, 0})
	require.Len(t, byYear, 3)
	assert.Nil(t, byYear[2].Year)

	// 4. Combined filters intersect.
	both := dataset.FilterRows(rows, []string{"Unemployment"}, []int{2019})
	require.Len(t, both, 1)
	assert.Equal(t, 2019, *both[0].Year)
}

/*
TestRankByFavorites verifies descending order, the result cap, stable ties,
and that zero-favorite datasets still rank.
*/
func TestRankByFavorites(t *testing.T) {
	candidates := []*dataset.Dataset{
		{ID: "a", FavoriteCount: 2},
		{ID: "b", FavoriteCount: 7},
		{ID: "c", FavoriteCount: 2},
		{ID: "d", FavoriteCount: 0},
		{ID: "e", FavoriteCount: 9},
		{ID: "f", FavoriteCount: 1},
		{ID: "g", FavoriteCount: 4},
	}

	ranked := dataset.RankByFavorites(candidates, 5)

	require.Len(t, ranked, 5)
	assert.Equal(t, "e", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
	assert.Equal(t, "g", ranked[2].ID)

	// Tie between a and c resolves by input order.
	assert.Equal(t, "a", ranked[3].ID)
	assert.Equal(t, "c", ranked[4].ID)
}

/*
TestRankByFavorites_FewerThanLimit verifies that a short candidate list is
returned whole, zero counts included.
*/
func TestRankByFavorites_FewerThanLimit(t *testing.T) {
	ranked := dataset.RankByFavorites([]*dataset.Dataset{
		{ID: "a", FavoriteCount: 0},
		{ID: "b", FavoriteCount: 3},
	}, 5)

	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, "a", ranked[1].ID)
}

/*
TestPartition verifies the browse buckets: ownership, favorites, curated
defaults, level grouping, and non-exclusive membership.
*/
func TestPartition(t *testing.T) {
	owner := "user-1"
	other := "user-2"

	mineState := &dataset.Dataset{ID: "m1", OwnerID: &owner, GeographicLevel: geocode.LevelState}
	mineCounty := &dataset.Dataset{ID: "m2", OwnerID: &owner, GeographicLevel: geocode.LevelCounty}
	curated := &dataset.Dataset{ID: "d1", GeographicLevel: geocode.LevelState, DisplayByDefault: true}
	favorited := &dataset.Dataset{ID: "f1", OwnerID: &other, GeographicLevel: geocode.LevelCounty}

	// Owned, favorited, and curated at once: lands in all three buckets.
	everywhere := &dataset.Dataset{ID: "x1", OwnerID: &owner, GeographicLevel: geocode.LevelState, DisplayByDefault: true}

	listing := dataset.Partition(
		[]*dataset.Dataset{mineState, mineCounty, curated, favorited, everywhere},
		owner,
		map[string]struct{}{"f1": {}, "x1": {}},
	)

	require.Len(t, listing.Mine.State, 2)
	assert.Equal(t, "m1", listing.Mine.State[0].ID)
	assert.Equal(t, "x1", listing.Mine.State[1].ID)
	require.Len(t, listing.Mine.County, 1)

	require.Len(t, listing.Favorites.County, 1)
	assert.Equal(t, "f1", listing.Favorites.County[0].ID)
	require.Len(t, listing.Favorites.State, 1)

	require.Len(t, listing.Default.State, 2)
	assert.Empty(t, listing.Default.County)
}

/*
TestPartition_Anonymous verifies that visitors only receive curated
defaults.
*/
func TestPartition_Anonymous(t *testing.T) {
	owner := "user-1"
	listing := dataset.Partition([]*dataset.Dataset{
		{ID: "a", OwnerID: &owner, GeographicLevel: geocode.LevelState},
		{ID: "b", GeographicLevel: geocode.LevelState, DisplayByDefault: true},
	}, "", nil)

	assert.Empty(t, listing.Mine.State)
	assert.Empty(t, listing.Favorites.State)
	require.Len(t, listing.Default.State, 1)
	assert.Equal(t, "b", listing.Default.State[0].ID)
}
