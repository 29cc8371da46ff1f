// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package dataset provides the PostgreSQL implementation for the dataset
domain's data access.

Derived metrics are computed in SQL rather than stored: favorite counts come
from a correlated subquery over the favorites join table, and view statistics
from COUNT aggregates over the view-event table. The bulk observation insert
runs inside a single transaction so a storage-level duplicate rolls the whole
batch back.
*/
package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chorostat/chorostat/internal/platform/database/schema"
	"github.com/chorostat/chorostat/internal/platform/dberr"
	"github.com/chorostat/chorostat/pkg/uuid"
)

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed dataset store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// datasetColumns is the projection shared by every dataset read, including
// the derived favorite count.
func datasetColumns() string {
	d := schema.GeographicDatasets
	f := schema.DatasetFavorites
	return fmt.Sprintf(`
		d.%s, d.%s, d.%s, d.%s, d.%s, d.%s, d.%s, d.%s, d.%s, d.%s,
		(SELECT COUNT(*) FROM %s f WHERE f.%s = d.%s) AS favorite_count`,
		d.ID, d.OwnerID, d.Name, d.Description, d.Organization, d.SourceURL,
		d.GeographicLevel, d.DisplayByDefault, d.IsPublic, d.CreatedAt,
		f.Table, f.EntityID, d.ID,
	)
}

func scanDataset(row pgx.Row) (*Dataset, error) {
	var dataset Dataset
	err := row.Scan(
		&dataset.ID,
		&dataset.OwnerID,
		&dataset.Name,
		&dataset.Description,
		&dataset.Organization,
		&dataset.SourceURL,
		&dataset.GeographicLevel,
		&dataset.DisplayByDefault,
		&dataset.IsPublic,
		&dataset.CreatedAt,
		&dataset.FavoriteCount,
	)
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// # Dataset Lifecycle

// Insert persists a new dataset. The error is returned unclassified so the
// service's save-with-retry loop can inspect the violated constraint name.
func (repository *repository) Insert(context context.Context, dataset *Dataset) error {
	d := schema.GeographicDatasets
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`,
		d.Table, d.ID, d.OwnerID, d.Name, d.Description, d.Organization,
		d.SourceURL, d.GeographicLevel, d.DisplayByDefault, d.IsPublic,
		d.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		dataset.ID,
		dataset.OwnerID,
		dataset.Name,
		dataset.Description,
		dataset.Organization,
		dataset.SourceURL,
		dataset.GeographicLevel,
		dataset.DisplayByDefault,
		dataset.IsPublic,
	).Scan(&dataset.CreatedAt)
	if err != nil {
		return fmt.Errorf("dataset_insert: %w", err)
	}
	return nil
}

// Update persists metadata changes. Like Insert, constraint violations pass
// through unclassified for the rename retry loop.
func (repository *repository) Update(context context.Context, dataset *Dataset) error {
	d := schema.GeographicDatasets
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1`,
		d.Table,
		d.Name, d.Description, d.Organization, d.SourceURL,
		d.GeographicLevel, d.DisplayByDefault, d.IsPublic,
		d.ID,
	)

	tag, err := repository.pool.Exec(context, query,
		dataset.ID,
		dataset.Name,
		dataset.Description,
		dataset.Organization,
		dataset.SourceURL,
		dataset.GeographicLevel,
		dataset.DisplayByDefault,
		dataset.IsPublic,
	)
	if err != nil {
		return fmt.Errorf("dataset_update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *repository) FindByID(context context.Context, id string) (*Dataset, error) {
	d := schema.GeographicDatasets
	query := fmt.Sprintf(`SELECT %s FROM %s d WHERE d.%s = $1`,
		datasetColumns(), d.Table, d.ID,
	)

	dataset, err := scanDataset(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "dataset_find_by_id")
	}
	return dataset, nil
}

// # Listing

func (repository *repository) ListVisible(context context.Context, viewerID string) ([]*Dataset, error) {
	d := schema.GeographicDatasets
	f := schema.DatasetFavorites

	// Anonymous viewers only see the curated and public catalogue. The
	// viewer branch adds owned and favorited datasets; the split avoids
	// comparing a uuid column against an empty string.
	var query string
	var args []any
	if viewerID == "" {
		query = fmt.Sprintf(`
			SELECT %s FROM %s d
			WHERE d.%s OR d.%s
			ORDER BY d.%s DESC`,
			datasetColumns(), d.Table,
			d.DisplayByDefault, d.IsPublic,
			d.CreatedAt,
		)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s d
			WHERE d.%s OR d.%s OR d.%s = $1
			   OR EXISTS (SELECT 1 FROM %s f WHERE f.%s = d.%s AND f.%s = $1)
			ORDER BY d.%s DESC`,
			datasetColumns(), d.Table,
			d.DisplayByDefault, d.IsPublic, d.OwnerID,
			f.Table, f.EntityID, d.ID, f.UserID,
			d.CreatedAt,
		)
		args = append(args, viewerID)
	}

	return repository.queryDatasets(context, query, args...)
}

func (repository *repository) ListPublic(context context.Context) ([]*Dataset, error) {
	d := schema.GeographicDatasets
	query := fmt.Sprintf(`
		SELECT %s FROM %s d
		WHERE d.%s
		ORDER BY d.%s DESC`,
		datasetColumns(), d.Table, d.IsPublic, d.CreatedAt,
	)
	return repository.queryDatasets(context, query)
}

func (repository *repository) queryDatasets(context context.Context, query string, args ...any) ([]*Dataset, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "dataset_list")
	}
	defer rows.Close()

	datasets := make([]*Dataset, 0)
	for rows.Next() {
		dataset, err := scanDataset(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "dataset_list_scan")
		}
		datasets = append(datasets, dataset)
	}
	return datasets, dberr.Wrap(rows.Err(), "dataset_list_rows")
}

// # Favorites

func (repository *repository) FavoriteIDs(context context.Context, userID string) (map[string]struct{}, error) {
	f := schema.DatasetFavorites
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		f.EntityID, f.Table, f.UserID,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "dataset_favorite_ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "dataset_favorite_ids_scan")
		}
		ids[id] = struct{}{}
	}
	return ids, dberr.Wrap(rows.Err(), "dataset_favorite_ids_rows")
}

func (repository *repository) AddFavorite(context context.Context, datasetID, userID string) error {
	f := schema.DatasetFavorites
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		f.Table, f.ID, f.EntityID, f.UserID,
		f.EntityID, f.UserID,
	)

	_, err := repository.pool.Exec(context, query, uuid.New(), datasetID, userID)
	return dberr.Wrap(err, "dataset_add_favorite")
}

func (repository *repository) RemoveFavorite(context context.Context, datasetID, userID string) error {
	f := schema.DatasetFavorites
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		f.Table, f.EntityID, f.UserID,
	)

	_, err := repository.pool.Exec(context, query, datasetID, userID)
	return dberr.Wrap(err, "dataset_remove_favorite")
}

// # View Tracking

func (repository *repository) RecordView(context context.Context, datasetID string, userID *string, ipAddress string) error {
	v := schema.DatasetViews
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)`,
		v.Table, v.ID, v.EntityID, v.UserID, v.IPAddress,
	)

	_, err := repository.pool.Exec(context, query, uuid.New(), datasetID, userID, ipAddress)
	return dberr.Wrap(err, "dataset_record_view")
}

func (repository *repository) ViewStats(context context.Context, datasetID string) (int, int, error) {
	v := schema.DatasetViews
	query := fmt.Sprintf(`
		SELECT COUNT(*), COUNT(DISTINCT %s)
		FROM %s
		WHERE %s = $1`,
		v.IPAddress, v.Table, v.EntityID,
	)

	var total, distinct int
	err := repository.pool.QueryRow(context, query, datasetID).Scan(&total, &distinct)
	if err != nil {
		return 0, 0, dberr.Wrap(err, "dataset_view_stats")
	}
	return total, distinct, nil
}

// # Observations

func (repository *repository) Attributes(context context.Context, datasetID string) ([]Attribute, error) {
	a := schema.GeographicAttributes
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s, %s`,
		a.ID, a.DatasetID, a.GeoCodeID, a.Name, a.Value, a.ValueType,
		a.Year, a.RelativeWeight,
		a.Table,
		a.DatasetID, a.DeletedAt,
		a.Name, a.Year,
	)

	rows, err := repository.pool.Query(context, query, datasetID)
	if err != nil {
		return nil, dberr.Wrap(err, "dataset_attributes")
	}
	defer rows.Close()

	attributes := make([]Attribute, 0)
	for rows.Next() {
		var attribute Attribute
		var weight *string
		err := rows.Scan(
			&attribute.ID,
			&attribute.DatasetID,
			&attribute.GeoCodeID,
			&attribute.Name,
			&attribute.Value,
			&attribute.ValueType,
			&attribute.Year,
			&weight,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "dataset_attributes_scan")
		}
		if weight != nil {
			relative := RelativeWeight(*weight)
			attribute.RelativeWeight = &relative
		}
		attributes = append(attributes, attribute)
	}
	return attributes, dberr.Wrap(rows.Err(), "dataset_attributes_rows")
}

// InsertAttributes writes the whole batch inside one transaction. Errors
// pass through unclassified so the service can recognise the observation
// unique constraint and report the batch as a conflict.
func (repository *repository) InsertAttributes(context context.Context, rows []Attribute) error {
	a := schema.GeographicAttributes
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.Table, a.ID, a.DatasetID, a.GeoCodeID, a.Name, a.Value,
		a.ValueType, a.Year, a.RelativeWeight,
	)

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("attribute_insert_begin: %w", err)
	}
	defer transaction.Rollback(context)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query,
			row.ID,
			row.DatasetID,
			row.GeoCodeID,
			row.Name,
			row.Value,
			row.ValueType,
			row.Year,
			row.RelativeWeight,
		)
	}

	results := transaction.SendBatch(context, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("attribute_insert: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("attribute_insert_close: %w", err)
	}

	return transaction.Commit(context)
}

func (repository *repository) SoftDeleteAttribute(context context.Context, datasetID, attributeID string) error {
	a := schema.GeographicAttributes
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		a.Table, a.DeletedAt, a.ID, a.DatasetID, a.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, attributeID, datasetID)
	if err != nil {
		return dberr.Wrap(err, "attribute_soft_delete")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
