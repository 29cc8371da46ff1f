// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chorostat/chorostat/internal/core/geocode"
	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/constants"
	"github.com/chorostat/chorostat/internal/platform/database/schema"
	"github.com/chorostat/chorostat/internal/platform/dberr"
	"github.com/chorostat/chorostat/internal/platform/validate"
	"github.com/chorostat/chorostat/pkg/disambig"
	"github.com/chorostat/chorostat/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for the dataset catalogue:
// uniqueness-preserving saves, read-side aggregation, and bulk ingestion.
type Service struct {
	repo    Repository
	geoRepo geocode.Repository
	logger  *slog.Logger
}

// NewService constructs a new [Service] with its required repositories.
func NewService(repo Repository, geoRepo geocode.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		geoRepo: geoRepo,
		logger:  logger,
	}
}

// # Dataset Management

/*
Create persists a new dataset under the uniqueness-preserving save protocol.

Description: The requested name is tried as-is; when it collides with
another dataset of the same owner, numbered variants derived from the
original name ("Name (1)", "Name (2)", …) are tried in order. The loop is
bounded; exhaustion surfaces as a conflict rather than spinning. On return
the entity carries the name that actually persisted.

Parameters:
  - context: context.Context
  - dataset: *Dataset (OwnerID set by the caller; ID assigned here)

Returns:
  - error: Validation errors, TITLE_CONFLICT_EXHAUSTED, or storage failures
*/
func (service *Service) Create(context context.Context, dataset *Dataset) error {
	if err := service.validateMetadata(dataset); err != nil {
		return err
	}

	dataset.ID = uuid.New()

	return service.saveWithRetry(dataset.Name, func(candidate string) error {
		dataset.Name = candidate
		return service.repo.Insert(context, dataset)
	})
}

/*
Update modifies a dataset's metadata. A rename passes back through the
uniqueness-preserving protocol, so renaming onto a sibling's name yields a
numbered variant instead of an error.

Parameters:
  - context: context.Context
  - dataset: *Dataset (Full desired state)
  - actorID: string
  - admin: bool (Admins may edit any dataset)

Returns:
  - error: NotFound, Forbidden, validation, or storage failures
*/
func (service *Service) Update(context context.Context, dataset *Dataset, actorID string, admin bool) error {
	existing, err := service.repo.FindByID(context, dataset.ID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(existing, actorID, admin); err != nil {
		return err
	}
	if err := service.validateMetadata(dataset); err != nil {
		return err
	}

	dataset.OwnerID = existing.OwnerID
	dataset.CreatedAt = existing.CreatedAt

	return service.saveWithRetry(dataset.Name, func(candidate string) error {
		dataset.Name = candidate
		return service.repo.Update(context, dataset)
	})
}

// saveWithRetry drives the disambiguation loop shared by Create and Update.
// Attempt 0 is the caller's own name; each subsequent attempt derives a
// numbered variant from the undecorated base, so a collision on an already
// suffixed name like "Census(2)" restarts the sequence at "Census(1)" instead
// of compounding to "Census(2)(1)". Only a violation of the (name, owner)
// constraint retries.
func (service *Service) saveWithRetry(requested string, save func(candidate string) error) error {
	base := disambig.Base(requested)
	for attempt := 0; attempt < constants.MaxTitleAttempts; attempt++ {
		candidate := requested
		if attempt > 0 {
			candidate = disambig.Title(base, attempt)
			if candidate == requested {
				// The original name already collided on attempt 0.
				continue
			}
		}

		err := save(candidate)
		if err == nil {
			if attempt > 0 {
				service.logger.Info("dataset name disambiguated",
					slog.String("requested", requested),
					slog.String("persisted", candidate),
				)
			}
			return nil
		}
		if dberr.IsUniqueViolationOf(err, schema.GeographicDatasets.NameOwnerConstraint) {
			continue
		}
		return dberr.Wrap(err, "dataset_save")
	}
	return apperr.TitleConflictExhausted(requested, constants.MaxTitleAttempts)
}

func (service *Service) validateMetadata(dataset *Dataset) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, dataset.Name).MaxLen(FieldName, dataset.Name, 150)
	validator.MaxLen(FieldDescription, dataset.Description, 2000)
	validator.MaxLen(FieldOrganization, dataset.Organization, 300)
	validator.MaxLen(FieldSourceURL, dataset.SourceURL, 500)
	validator.Required(FieldGeographicLevel, string(dataset.GeographicLevel)).
		OneOf(FieldGeographicLevel, string(dataset.GeographicLevel),
			string(geocode.LevelState),
			string(geocode.LevelCounty),
		)
	return validator.Err()
}

// # Discovery

/*
Get fetches one dataset and records the visit.

Description: Every successful fetch appends a view event attributed to the
authenticated user or, for visitors, to the client IP alone. View counts on
the returned entity are derived by query, including the event just written.

Parameters:
  - context: context.Context
  - id: string
  - viewerID: string (Empty for anonymous visitors)
  - ipAddress: string

Returns:
  - *Dataset: Entity with favorite and view counts populated
  - error: NotFound or storage failures
*/
func (service *Service) Get(context context.Context, id, viewerID, ipAddress string) (*Dataset, error) {
	dataset, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	var userID *string
	if viewerID != "" {
		userID = &viewerID
	}
	if err := service.repo.RecordView(context, dataset.ID, userID, ipAddress); err != nil {
		// A lost view event must not fail the read.
		service.logger.Warn("dataset view not recorded",
			slog.String("dataset_id", dataset.ID),
			slog.String("error", err.Error()),
		)
	}

	total, distinct, err := service.repo.ViewStats(context, dataset.ID)
	if err != nil {
		return nil, err
	}
	dataset.ViewCount = total
	dataset.DistinctViewCount = distinct

	return dataset, nil
}

/*
Browse returns the viewer's partitioned listing: their own datasets, their
favorites, and the curated defaults, each split by geographic level.
Anonymous viewers receive only the defaults.

Parameters:
  - context: context.Context
  - viewerID: string (Empty for anonymous visitors)

Returns:
  - Listing: The bucketed browse view
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

	return Partition(candidates, viewerID, favoriteIDs), nil
}

// Popular returns the most-favorited public datasets. Favorite counts are
// derived from the join table on every call, never read from a counter.
func (service *Service) Popular(context context.Context) ([]*Dataset, error) {
	candidates, err := service.repo.ListPublic(context)
	if err != nil {
		return nil, err
	}
	return RankByFavorites(candidates, constants.PopularListSize), nil
}

// # Favorites

// Favorite marks a dataset as a favorite of the user. Idempotent.
func (service *Service) Favorite(context context.Context, datasetID, userID string) error {
	if _, err := service.repo.FindByID(context, datasetID); err != nil {
		return err
	}
	return service.repo.AddFavorite(context, datasetID, userID)
}

// Unfavorite removes the user's favorite if present.
func (service *Service) Unfavorite(context context.Context, datasetID, userID string) error {
	return service.repo.RemoveFavorite(context, datasetID, userID)
}

// # Aggregation

// Names returns the distinct attribute names of a dataset, sorted
// ascending, each paired with the dataset id.
func (service *Service) Names(context context.Context, datasetID string) ([]NameRef, error) {
	rows, err := service.fetchRows(context, datasetID)
	if err != nil {
		return nil, err
	}
	return DistinctNames(datasetID, rows), nil
}

// YearsFor returns the distinct years recorded for one attribute name,
// newest first. Undated observations are excluded.
func (service *Service) YearsFor(context context.Context, datasetID, name string) ([]int, error) {
	rows, err := service.fetchRows(context, datasetID)
	if err != nil {
		return nil, err
	}
	return Years(rows, name), nil
}

// Summary returns the count-decorated observation summary of a dataset,
// optionally narrowed to specific attribute names and years.
func (service *Service) Summary(context context.Context, datasetID string, names []string, years []int) ([]SummaryRow, error) {
	dataset, err := service.repo.FindByID(context, datasetID)
	if err != nil {
		return nil, err
	}
	rows, err := service.repo.Attributes(context, datasetID)
	if err != nil {
		return nil, err
	}
	return Summarize(dataset, FilterRows(rows, names, years)), nil
}

func (service *Service) fetchRows(context context.Context, datasetID string) ([]Attribute, error) {
	if _, err := service.repo.FindByID(context, datasetID); err != nil {
		return nil, err
	}
	return service.repo.Attributes(context, datasetID)
}

// # Observation Lifecycle

/*
DeleteAttribute soft-deletes one observation.

Parameters:
  - context: context.Context
  - datasetID: string
  - attributeID: string
  - actorID: string
  - admin: bool

Returns:
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) DeleteAttribute(context context.Context, datasetID, attributeID, actorID string, admin bool) error {
	dataset, err := service.repo.FindByID(context, datasetID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(dataset, actorID, admin); err != nil {
		return err
	}
	return service.repo.SoftDeleteAttribute(context, datasetID, attributeID)
}

/*
BulkIngest screens and inserts a batch of incoming observations.

Description: Each record passes a validation gate before insertion. A record
is rejected when its value is absent, its attribute name is empty, its
geographic label resolves to no known region, or it repeats an earlier
record's (region, name, year) tuple within the same batch. Survivors are
inserted in a single transaction; an observation already persisted from a
previous batch violates the storage unique constraint and rolls the whole
batch back as a conflict. Nothing is dropped silently — the report lists
every rejected row with its reason.

Parameters:
  - context: context.Context
  - datasetID: string (Target dataset; actor must own it)
  - actorID: string
  - admin: bool
  - records: []Record (Loosely-typed incoming observations)

Returns:
  - *Report: Inserted count and per-row skip reasons
  - error: NotFound, Forbidden, batch size, or transactional failures
*/
func (service *Service) BulkIngest(context context.Context, datasetID, actorID string, admin bool, records []Record) (*Report, error) {
	if len(records) > constants.MaxIngestRows {
		return nil, apperr.Unprocessable("ingestion batch exceeds the row limit")
	}

	dataset, err := service.repo.FindByID(context, datasetID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(dataset, actorID, admin); err != nil {
		return nil, err
	}

	report := &Report{Skipped: []Skipped{}}
	seen := make(map[observationKey]struct{}, len(records))
	rows := make([]Attribute, 0, len(records))

	for position, record := range records {
		rowNumber := position + 1

		name := strings.TrimSpace(record.Name)

		// ── 1. Validation gate ──
		switch {
		case record.Value == nil:
			report.Skipped = append(report.Skipped, Skipped{Row: rowNumber, Reason: SkipMissingValue})
			continue
		case name == "":
			report.Skipped = append(report.Skipped, Skipped{Row: rowNumber, Reason: SkipMissingName})
			continue
		}

		// ── 2. Geographic resolution ──
		code, found, err := service.geoRepo.Resolve(context, record.GeoLabel)
		if err != nil {
			return nil, err
		}
		if !found {
			report.Skipped = append(report.Skipped, Skipped{Row: rowNumber, Reason: SkipUnresolvedGeo})
			continue
		}

		// ── 3. Intra-batch deduplication ──
		key := keyFor(code.ID, name, record.Year)
		if _, dup := seen[key]; dup {
			report.Skipped = append(report.Skipped, Skipped{Row: rowNumber, Reason: SkipDuplicate})
			continue
		}
		seen[key] = struct{}{}

		rows = append(rows, Attribute{
			ID:             uuid.New(),
			DatasetID:      datasetID,
			GeoCodeID:      code.ID,
			Name:           name,
			Value:          *record.Value,
			ValueType:      coerceValueType(record.ValueType),
			Year:           record.Year,
			RelativeWeight: parseWeight(record.RelativeWeight),
		})
	}

	// ── 4. Transactional insert ──
	if len(rows) > 0 {
		if err := service.repo.InsertAttributes(context, rows); err != nil {
			if dberr.IsUniqueViolationOf(err, schema.GeographicAttributes.ObservationConstraint) {
				return nil, apperr.Conflict("batch contains observations already recorded for this dataset")
			}
			return nil, dberr.Wrap(err, "dataset_bulk_ingest")
		}
	}
	report.Inserted = len(rows)

	service.logger.Info("bulk ingestion completed",
		slog.String("dataset_id", datasetID),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// coerceValueType applies the percent default to absent or unrecognised
// incoming value types.
func coerceValueType(raw string) ValueType {
	valueType := ValueType(strings.ToLower(strings.TrimSpace(raw)))
	if !valueType.IsValid() {
		return ValueTypePercent
	}
	return valueType
}

func parseWeight(raw string) *RelativeWeight {
	weight := RelativeWeight(strings.ToLower(strings.TrimSpace(raw)))
	switch weight {
	case WeightHigh, WeightMedium, WeightLow:
		return &weight
	}
	return nil
}

func authorizeOwner(dataset *Dataset, actorID string, admin bool) error {
	if admin {
		return nil
	}
	if dataset.OwnerID == nil || *dataset.OwnerID != actorID {
		return apperr.Forbidden("dataset belongs to another user")
	}
	return nil
}
