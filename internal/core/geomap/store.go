// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package geomap

import "context"

// # Map Data Access

// Repository defines the data access contract for the map domain.
type Repository interface {

	/*
		Insert persists a new map.

		Parameters:
		  - context: context.Context
		  - entity: *Map (Identity and layers, title already chosen)

		Returns:
		  - error: Unique-violation on (title, owner), or storage failures
	*/
	Insert(context context.Context, entity *Map) error

	/*
		Update persists changes to a map's mutable fields and stamps
		updated_at.

		Parameters:
		  - context: context.Context
		  - entity: *Map

		Returns:
		  - error: ErrNotFound, unique-violation on retitle, or storage
		    failures
	*/
	Update(context context.Context, entity *Map) error

	/*
		SetThumbnail records the storage key of a map's snapshot.

		Parameters:
		  - context: context.Context
		  - mapID: string
		  - key: string (Object key inside the thumbnail folder)

		Returns:
		  - error: ErrNotFound or storage failures
	*/
	SetThumbnail(context context.Context, mapID, key string) error

	/*
		FindByID returns a map with its derived favorite count.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Map: The hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Map, error)

	/*
		ListVisible returns every map the viewer may browse: public maps,
		the viewer's own, and the viewer's favorites. Favorite counts are
		populated; ordering is by creation time, newest first.

		Parameters:
		  - context: context.Context
		  - viewerID: string (Empty for anonymous visitors)

		Returns:
		  - []*Map: Candidates for the browse listing
		  - error: Database retrieval failures
	*/
	ListVisible(context context.Context, viewerID string) ([]*Map, error)

	/*
		ListPublic returns all public maps with favorite counts populated,
		ordered by creation time, newest first.
	*/
	ListPublic(context context.Context) ([]*Map, error)

	/*
		FavoriteIDs returns the set of map ids a user has favorited.
	*/
	FavoriteIDs(context context.Context, userID string) (map[string]struct{}, error)

	/*
		AddFavorite records a favorite. Idempotent.
	*/
	AddFavorite(context context.Context, mapID, userID string) error

	/*
		RemoveFavorite deletes a favorite if present.
	*/
	RemoveFavorite(context context.Context, mapID, userID string) error

	/*
		RecordView appends one view event.

		Parameters:
		  - context: context.Context
		  - mapID: string
		  - userID: *string (nil for anonymous views)
		  - ipAddress: string

		Returns:
		  - error: Storage failures
	*/
	RecordView(context context.Context, mapID string, userID *string, ipAddress string) error

	/*
		ViewStats returns the total and distinct-IP view counts, always
		derived by query.
	*/
	ViewStats(context context.Context, mapID string) (int, int, error)
}
