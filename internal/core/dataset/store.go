// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset

import "context"

// # Dataset Data Access

// Repository defines the data access contract for the dataset domain.
type Repository interface {

	/*
		Insert persists a new dataset.

		Parameters:
		  - context: context.Context
		  - dataset: *Dataset (Identity and metadata, name already chosen)

		Returns:
		  - error: Unique-violation on (name, owner), or storage failures
	*/
	Insert(context context.Context, dataset *Dataset) error

	/*
		Update persists changes to a dataset's mutable metadata.

		Parameters:
		  - context: context.Context
		  - dataset: *Dataset

		Returns:
		  - error: ErrNotFound, unique-violation on rename, or storage failures
	*/
	Update(context context.Context, dataset *Dataset) error

	/*
		FindByID returns a dataset with its derived favorite count.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Dataset: The hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Dataset, error)

	/*
		ListVisible returns every dataset the viewer may browse: curated
		defaults, public datasets, the viewer's own, and the viewer's
		favorites. Favorite counts are populated; ordering is by creation
		time, newest first.

		Parameters:
		  - context: context.Context
		  - viewerID: string (Empty for anonymous visitors)

		Returns:
		  - []*Dataset: Candidates for the browse listing
		  - error: Database retrieval failures
	*/
	ListVisible(context context.Context, viewerID string) ([]*Dataset, error)

	/*
		ListPublic returns all public datasets with favorite counts
		populated, ordered by creation time, newest first.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Dataset: Public catalogue
		  - error: Database retrieval failures
	*/
	ListPublic(context context.Context) ([]*Dataset, error)

	/*
		FavoriteIDs returns the set of dataset ids a user has favorited.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - map[string]struct{}: Favorited dataset ids
		  - error: Database retrieval failures
	*/
	FavoriteIDs(context context.Context, userID string) (map[string]struct{}, error)

	/*
		AddFavorite records a favorite. Idempotent: favoriting twice is
		not an error.

		Parameters:
		  - context: context.Context
		  - datasetID: string
		  - userID: string

		Returns:
		  - error: Storage failures
	*/
	AddFavorite(context context.Context, datasetID, userID string) error

	/*
		RemoveFavorite deletes a favorite if present.

		Parameters:
		  - context: context.Context
		  - datasetID: string
		  - userID: string

		Returns:
		  - error: Storage failures
	*/
	RemoveFavorite(context context.Context, datasetID, userID string) error

	/*
		RecordView appends one view event.

		Parameters:
		  - context: context.Context
		  - datasetID: string
		  - userID: *string (nil for anonymous views)
		  - ipAddress: string

		Returns:
		  - error: Storage failures
	*/
	RecordView(context context.Context, datasetID string, userID *string, ipAddress string) error

	/*
		ViewStats returns the total and distinct-IP view counts, always
		derived by query.

		Parameters:
		  - context: context.Context
		  - datasetID: string

		Returns:
		  - int: Total views
		  - int: Views from distinct IP addresses
		  - error: Database retrieval failures
	*/
	ViewStats(context context.Context, datasetID string) (int, int, error)

	/*
		Attributes returns the non-soft-deleted observations of a dataset.

		Parameters:
		  - context: context.Context
		  - datasetID: string

		Returns:
		  - []Attribute: Active observation rows
		  - error: Database retrieval failures
	*/
	Attributes(context context.Context, datasetID string) ([]Attribute, error)

	/*
		InsertAttributes persists a batch of observations in one
		transaction. Either every row lands or none do.

		Parameters:
		  - context: context.Context
		  - rows: []Attribute (Screened observations, ids assigned)

		Returns:
		  - error: Unique-violation on an existing (region, name, year,
		    dataset) tuple rolls back the whole batch
	*/
	InsertAttributes(context context.Context, rows []Attribute) error

	/*
		SoftDeleteAttribute stamps deleted_at on one observation.

		Parameters:
		  - context: context.Context
		  - datasetID: string (Scopes the delete to its dataset)
		  - attributeID: string

		Returns:
		  - error: ErrNotFound if absent or already deleted
	*/
	SoftDeleteAttribute(context context.Context, datasetID, attributeID string) error
}
