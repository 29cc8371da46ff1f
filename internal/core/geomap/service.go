// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package geomap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/constants"
	"github.com/chorostat/chorostat/internal/platform/database/schema"
	"github.com/chorostat/chorostat/internal/platform/dberr"
	"github.com/chorostat/chorostat/internal/platform/objectstore"
	"github.com/chorostat/chorostat/internal/platform/validate"
	"github.com/chorostat/chorostat/pkg/disambig"
	"github.com/chorostat/chorostat/pkg/slug"
	"github.com/chorostat/chorostat/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for map building: the
// uniqueness-preserving save protocol, discovery listings, favorites, and
// thumbnail snapshots.
type Service struct {
	repo       Repository
	thumbnails objectstore.Store
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its repository and the
// thumbnail object store.
func NewService(repo Repository, thumbnails objectstore.Store, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		thumbnails: thumbnails,
		logger:     logger,
	}
}

// # Map Management

/*
Create persists a new map under the uniqueness-preserving save protocol.

Description: The requested title is tried as-is; a collision with another
map of the same owner yields numbered variants ("Title(1)", "Title(2)", …)
derived from the original title. The loop is bounded; exhaustion surfaces
as a conflict. On return the entity carries the title that persisted.

Parameters:
  - context: context.Context
  - entity: *Map (OwnerID set by the caller; ID assigned here)

Returns:
  - error: Validation errors, TITLE_CONFLICT_EXHAUSTED, or storage failures
*/
func (service *Service) Create(context context.Context, entity *Map) error {
	if err := validateMap(entity); err != nil {
		return err
	}

	entity.ID = uuid.New()

	return service.saveWithRetry(entity.Title, func(candidate string) error {
		entity.Title = candidate
		return service.repo.Insert(context, entity)
	})
}

/*
Update modifies a map. A retitle passes back through the save protocol, so
renaming onto a sibling's title yields a numbered variant instead of an
error.

Parameters:
  - context: context.Context
  - entity: *Map (Full desired state)
  - actorID: string
  - admin: bool

Returns:
  - error: NotFound, Forbidden, validation, or storage failures
*/
func (service *Service) Update(context context.Context, entity *Map, actorID string, admin bool) error {
	existing, err := service.repo.FindByID(context, entity.ID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(existing, actorID, admin); err != nil {
		return err
	}
	if err := validateMap(entity); err != nil {
		return err
	}

	entity.OwnerID = existing.OwnerID
	entity.CreatedAt = existing.CreatedAt
	entity.ThumbnailKey = existing.ThumbnailKey

	return service.saveWithRetry(entity.Title, func(candidate string) error {
		entity.Title = candidate
		return service.repo.Update(context, entity)
	})
}

// saveWithRetry drives the title disambiguation loop. Attempt 0 is the
// caller's own title; later attempts derive numbered variants from the
// undecorated base, so a collision on "Rain(2)" restarts the sequence at
// "Rain(1)" instead of compounding to "Rain(2)(1)". Only a violation of the
// (title, owner) constraint retries.
func (service *Service) saveWithRetry(requested string, save func(candidate string) error) error {
	base := disambig.Base(requested)
	for attempt := 0; attempt < constants.MaxTitleAttempts; attempt++ {
		candidate := requested
		if attempt > 0 {
			candidate = disambig.Title(base, attempt)
			if candidate == requested {
				// The original title already collided on attempt 0.
				continue
			}
		}

		err := save(candidate)
		if err == nil {
			if attempt > 0 {
				service.logger.Info("map title disambiguated",
					slog.String("requested", requested),
					slog.String("persisted", candidate),
				)
			}
			return nil
		}
		if dberr.IsUniqueViolationOf(err, schema.Maps.TitleOwnerConstraint) {
			continue
		}
		return dberr.Wrap(err, "map_save")
	}
	return apperr.TitleConflictExhausted(requested, constants.MaxTitleAttempts)
}

func validateMap(entity *Map) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, entity.Title).MaxLen(FieldTitle, entity.Title, 150)
	validator.Required(FieldPrimaryDatasetID, entity.PrimaryDatasetID).
		UUID(FieldPrimaryDatasetID, entity.PrimaryDatasetID)
	validator.Required(FieldAttributeName1, entity.AttributeName1)
	validator.Required(FieldHexColor1, entity.HexColor1).HexColor(FieldHexColor1, entity.HexColor1)
	validator.MaxLen(FieldCenterCoordinates, entity.CenterCoordinates, 100)

	if entity.AttributeYear1 != nil {
		validator.Year(FieldAttributeYear1, *entity.AttributeYear1)
	}

	// The secondary layer is all-or-nothing.
	if entity.SecondaryDatasetID != nil || entity.AttributeName2 != nil || entity.HexColor2 != nil {
		complete := entity.SecondaryDatasetID != nil && entity.AttributeName2 != nil && entity.HexColor2 != nil
		validator.Custom(FieldAttributeName2, !complete,
			"secondary layer requires dataset, attribute, and color together")
		if entity.HexColor2 != nil {
			validator.HexColor(FieldHexColor2, *entity.HexColor2)
		}
		if entity.SecondaryDatasetID != nil {
			validator.UUID("secondary_dataset_id", *entity.SecondaryDatasetID)
		}
		if entity.AttributeYear2 != nil {
			validator.Year(FieldAttributeYear2, *entity.AttributeYear2)
		}
	}

	return validator.Err()
}

// # Thumbnails

/*
SaveThumbnail stores a base64-encoded snapshot of the rendered map and
records its object key.

Description: The object key is derived from the slugified title and the map
id, so re-uploading after a rename produces a fresh key while the id keeps
keys collision-free.

Parameters:
  - context: context.Context
  - mapID: string
  - encoded: string (Base64 PNG from the map editor)
  - actorID: string
  - admin: bool

Returns:
  - string: The URL serving the stored thumbnail
  - error: NotFound, Forbidden, decode, or storage failures
*/
func (service *Service) SaveThumbnail(context context.Context, mapID, encoded, actorID string, admin bool) (string, error) {
	entity, err := service.repo.FindByID(context, mapID)
	if err != nil {
		return "", err
	}
	if err := authorizeOwner(entity, actorID, admin); err != nil {
		return "", err
	}

	data, err := objectstore.DecodeImage(encoded)
	if err != nil {
		return "", apperr.Unprocessable("thumbnail is not valid base64 image data")
	}
	if len(data) > constants.MaxUploadBytes {
		return "", apperr.Unprocessable("thumbnail exceeds the upload size limit")
	}

	key := fmt.Sprintf("%s-%s.png", slug.From(entity.Title), entity.ID)
	if err := service.thumbnails.Put(context, objectstore.ThumbnailFolder, key, data); err != nil {
		return "", apperr.Internal(err)
	}
	if err := service.repo.SetThumbnail(context, mapID, key); err != nil {
		return "", err
	}

	return service.thumbnails.URL(context, objectstore.ThumbnailFolder, key)
}

// attachThumbnailURL resolves the stored key into a servable URL. A failed
// resolution degrades to an empty URL rather than failing the read.
func (service *Service) attachThumbnailURL(context context.Context, entity *Map) {
	if entity.ThumbnailKey == nil {
		return
	}
	url, err := service.thumbnails.URL(context, objectstore.ThumbnailFolder, *entity.ThumbnailKey)
	if err != nil {
		service.logger.Warn("thumbnail url not resolved",
			slog.String("map_id", entity.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	entity.ThumbnailURL = url
}

// # Discovery

/*
Get fetches one map and records the visit.

Description: Every successful fetch appends a view event attributed to the
authenticated user or, for visitors, to the client IP alone. View counts on
the returned entity are derived by query, including the event just written.

Parameters:
  - context: context.Context
  - id: string
  - viewerID: string (Empty for anonymous visitors)
  - ipAddress: string

Returns:
  - *Map: Entity with favorite and view counts and thumbnail URL populated
  - error: NotFound or storage failures
*/
func (service *Service) Get(context context.Context, id, viewerID, ipAddress string) (*Map, error) {
	entity, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	var userID *string
	if viewerID != "" {
		userID = &viewerID
	}
	if err := service.repo.RecordView(context, entity.ID, userID, ipAddress); err != nil {
		// A lost view event must not fail the read.
		service.logger.Warn("map view not recorded",
			slog.String("map_id", entity.ID),
			slog.String("error", err.Error()),
		)
	}

	total, distinct, err := service.repo.ViewStats(context, entity.ID)
	if err != nil {
		return nil, err
	}
	entity.ViewCount = total
	entity.DistinctViewCount = distinct

	service.attachThumbnailURL(context, entity)
	return entity, nil
}

/*
Browse returns the viewer's partitioned listing: their own maps, their
favorites, and the public gallery. Anonymous viewers receive the gallery
only.

Parameters:
  - context: context.Context
  - viewerID: string (Empty for anonymous visitors)

Returns:
  - Listing: The bucketed browse view with thumbnail URLs populated
  - error: Database retrieval failures
*/
func (service *Service) Browse(context context.Context, viewerID string) (Listing, error) {
	candidates, err := service.repo.ListVisible(context, viewerID)
	if err != nil {
		return Listing{}, err
	}

	favoriteIDs := map[string]struct{}{}
	if viewerID != "" {
		favoriteIDs, err = service.repo.FavoriteIDs(context, viewerID)
		if err != nil {
			return Listing{}, err
		}
	}

	listing := Listing{Mine: []*Map{}, Favorites: []*Map{}, Public: []*Map{}}
	for _, candidate := range candidates {
		service.attachThumbnailURL(context, candidate)

		if viewerID != "" && candidate.OwnerID != nil && *candidate.OwnerID == viewerID {
			listing.Mine = append(listing.Mine, candidate)
		}
		if _, ok := favoriteIDs[candidate.ID]; ok {
			listing.Favorites = append(listing.Favorites, candidate)
		}
		if candidate.IsPublic {
			listing.Public = append(listing.Public, candidate)
		}
	}
	return listing, nil
}

// Popular returns the most-favorited public maps. Favorite counts are
// derived from the join table on every call.
func (service *Service) Popular(context context.Context) ([]*Map, error) {
	candidates, err := service.repo.ListPublic(context)
	if err != nil {
		return nil, err
	}

	ranked := rankByFavorites(candidates, constants.PopularListSize)
	for _, entity := range ranked {
		service.attachThumbnailURL(context, entity)
	}
	return ranked, nil
}

// # Favorites

// Favorite marks a map as a favorite of the user. Idempotent.
func (service *Service) Favorite(context context.Context, mapID, userID string) error {
	if _, err := service.repo.FindByID(context, mapID); err != nil {
		return err
	}
	return service.repo.AddFavorite(context, mapID, userID)
}

// Unfavorite removes the user's favorite if present.
func (service *Service) Unfavorite(context context.Context, mapID, userID string) error {
	return service.repo.RemoveFavorite(context, mapID, userID)
}

// # Helpers

// rankByFavorites sorts stably by derived favorite count, best first, and
// caps the result. Ties keep input order; zero counts rank rather than drop.
func rankByFavorites(maps []*Map, limit int) []*Map {
	ranked := make([]*Map, len(maps))
	copy(ranked, maps)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FavoriteCount > ranked[j].FavoriteCount
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func authorizeOwner(entity *Map, actorID string, admin bool) error {
	if admin {
		return nil
	}
	if entity.OwnerID == nil || *entity.OwnerID != actorID {
		return apperr.Forbidden("map belongs to another user")
	}
	return nil
}
