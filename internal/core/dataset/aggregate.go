// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset

import (
	"sort"

	"github.com/chorostat/chorostat/internal/core/geocode"
)

// # Aggregation Engine
//
// Pure functions over in-memory attribute rows. The service fetches the
// non-deleted rows of a dataset once and derives every read-side projection
// here, which keeps the grouping and ordering rules testable without a
// database. Soft-deleted rows are filtered defensively in case a caller
// passes an unfiltered slice.

/*
DistinctNames returns the distinct attribute names of a dataset.

Description: Names are deduplicated across years and regions, sorted
lexicographically ascending, and paired with the dataset id so the map
builder can reference the observation source directly.

Parameters:
  - datasetID: string
  - rows: []Attribute (Observations of one dataset)

Returns:
  - []NameRef: Sorted distinct names; empty slice for an empty dataset
*/
func DistinctNames(datasetID string, rows []Attribute) []NameRef {
	seen := make(map[string]struct{}, len(rows))
	names := make([]string, 0, len(rows))

	for _, row := range rows {
		if row.DeletedAt != nil {
			continue
		}
		if _, ok := seen[row.Name]; ok {
			continue
		}
		seen[row.Name] = struct{}{}
		names = append(names, row.Name)
	}
	sort.Strings(names)

	refs := make([]NameRef, len(names))
	for i, name := range names {
		refs[i] = NameRef{Name: name, DatasetID: datasetID}
	}
	return refs
}

/*
Years returns the distinct years recorded for one attribute name.

Description: Undated observations (nil year) are excluded; the remaining
years are deduplicated and sorted descending so the most recent vintage
is the default selection in the map builder.

Parameters:
  - rows: []Attribute (Observations of one dataset)
  - name: string (Attribute name to filter on, exact match)

Returns:
  - []int: Distinct years, newest first; empty slice when none are dated
*/
func Years(rows []Attribute, name string) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)

	for _, row := range rows {
		if row.DeletedAt != nil || row.Name != name || row.Year == nil {
			continue
		}
		if _, ok := seen[*row.Year]; ok {
			continue
		}
		seen[*row.Year] = struct{}{}
		years = append(years, *row.Year)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// yearKey distinguishes undated groups from any concrete year, including 0.
type yearKey struct {
	hasYear bool
	year    int
}

/*
Summarize produces the count-decorated summary of a dataset's observations.

Description: Observations are grouped by (attribute name, year); undated
rows form their own group per name and never merge with a literal year 0.
Groups are ordered by name ascending, then year ascending with the undated
group last. Each row is projected with the source dataset's descriptive
fields so the summary renders without a second lookup.

Parameters:
  - source: *Dataset (Supplies the Source* projection fields)
  - rows: []Attribute (Observations of the same dataset)

Returns:
  - []SummaryRow: Ordered groups with counts; empty slice for an empty dataset
*/
func Summarize(source *Dataset, rows []Attribute) []SummaryRow {
	type group struct {
		name  string
		key   yearKey
		count int
	}

	counts := make(map[string]map[yearKey]int)
	for _, row := range rows {
		if row.DeletedAt != nil {
			continue
		}
		key := yearKey{}
		if row.Year != nil {
			key = yearKey{hasYear: true, year: *row.Year}
		}
		if counts[row.Name] == nil {
			counts[row.Name] = make(map[yearKey]int)
		}
		counts[row.Name][key]++
	}

	groups := make([]group, 0, len(counts))
	for name, byYear := range counts {
		for key, count := range byYear {
			groups = append(groups, group{name: name, key: key, count: count})
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].name != groups[j].name {
			return groups[i].name < groups[j].name
		}
		// Dated groups ascending, undated group after every year.
		left, right := groups[i].key, groups[j].key
		if left.hasYear != right.hasYear {
			return left.hasYear
		}
		return left.year < right.year
	})

	summary := make([]SummaryRow, len(groups))
	for i, g := range groups {
		row := SummaryRow{
			AttributeName:      g.name,
			AttributeCount:     g.count,
			SourceID:           source.ID,
			SourceName:         source.Name,
			SourceDescription:  source.Description,
			SourceOrganization: source.Organization,
			SourceURL:          source.SourceURL,
		}
		if g.key.hasYear {
			year := g.key.year
			row.AttributeYear = &year
		}
		summary[i] = row
	}
	return summary
}

/*
FilterRows narrows observations to the requested names and years.

Description: Both filters are optional; an empty names slice keeps every
attribute name and an empty years slice keeps every year. Undated rows only
survive a year filter when it contains 0. Matching is exact on names.

Parameters:
  - rows: []Attribute (Observations of one dataset)
  - names: []string (Attribute names to keep; empty keeps all)
  - years: []int (Years to keep; empty keeps all, 0 keeps undated rows)

Returns:
  - []Attribute: The surviving rows in input order
*/
func FilterRows(rows []Attribute, names []string, years []int) []Attribute {
	if len(names) == 0 && len(years) == 0 {
		return rows
	}

	nameSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		nameSet[n] = struct{}{}
	}
	yearSet := make(map[int]struct{}, len(years))
	for _, y := range years {
		yearSet[y] = struct{}{}
	}

	kept := make([]Attribute, 0, len(rows))
	for _, row := range rows {
		if len(nameSet) > 0 {
			if _, ok := nameSet[row.Name]; !ok {
				continue
			}
		}
		if len(yearSet) > 0 {
			year := 0
			if row.Year != nil {
				year = *row.Year
			}
			if _, ok := yearSet[year]; !ok {
				continue
			}
		}
		kept = append(kept, row)
	}
	return kept
}

/*
RankByFavorites returns the most-favorited datasets, best first.

Description: Ranking reads the derived FavoriteCount populated by the
repository. The sort is stable, so datasets tied on favorites keep their
input order (the repository orders by creation time); zero-favorite
datasets are ranked, not dropped.

Parameters:
  - datasets: []*Dataset (Candidates with FavoriteCount populated)
  - limit: int (Maximum entries to return)

Returns:
  - []*Dataset: At most limit entries, favorite count descending
*/
func RankByFavorites(datasets []*Dataset, limit int) []*Dataset {
	ranked := make([]*Dataset, len(datasets))
	copy(ranked, datasets)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FavoriteCount > ranked[j].FavoriteCount
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

/*
Partition builds the browse listing for one viewer.

Description: Each candidate lands in every bucket whose rule it satisfies:
Mine when the viewer owns it, Favorites when its id is in favoriteIDs, and
Default when curators flagged it display-by-default. Buckets are then split
by geographic level. Input order is preserved within each bucket.

Parameters:
  - candidates: []*Dataset (Everything visible to the viewer)
  - viewerID: string (Empty for anonymous visitors)
  - favoriteIDs: map[string]struct{} (Dataset ids the viewer favorited)

Returns:
  - Listing: The bucketed, level-grouped browse view
*/
func Partition(candidates []*Dataset, viewerID string, favoriteIDs map[string]struct{}) Listing {
	var listing Listing

	for _, candidate := range candidates {
		if viewerID != "" && candidate.OwnerID != nil && *candidate.OwnerID == viewerID {
			listing.Mine.add(candidate)
		}
		if _, ok := favoriteIDs[candidate.ID]; ok {
			listing.Favorites.add(candidate)
		}
		if candidate.DisplayByDefault {
			listing.Default.add(candidate)
		}
	}
	return listing
}

func (g *LevelGroup) add(d *Dataset) {
	if d.GeographicLevel == geocode.LevelCounty {
		g.County = append(g.County, d)
		return
	}
	g.State = append(g.State, d)
}
