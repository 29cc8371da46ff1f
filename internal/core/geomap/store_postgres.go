// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package geomap

import (
	"context"
	"errors"
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

// NewRepository constructs a PostgreSQL backed map store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// mapColumns is the projection shared by every map read, including the
// derived favorite count.
func mapColumns() string {
	m := schema.Maps
	f := schema.MapFavorites
	return fmt.Sprintf(`
		m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s,
		m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s,
		(SELECT COUNT(*) FROM %s f WHERE f.%s = m.%s) AS favorite_count`,
		m.ID, m.OwnerID, m.Title,
		m.PrimaryDatasetID, m.AttributeName1, m.AttributeYear1, m.HexColor1,
		m.SecondaryDatasetID, m.AttributeName2, m.AttributeYear2, m.HexColor2,
		m.ZoomLevel, m.CenterCoordinates, m.IsPublic, m.ThumbnailKey,
		m.CreatedAt, m.UpdatedAt,
		f.Table, f.EntityID, m.ID,
	)
}

func scanMap(row pgx.Row) (*Map, error) {
	var entity Map
	err := row.Scan(
		&entity.ID,
		&entity.OwnerID,
		&entity.Title,
		&entity.PrimaryDatasetID,
		&entity.AttributeName1,
		&entity.AttributeYear1,
		&entity.HexColor1,
		&entity.SecondaryDatasetID,
		&entity.AttributeName2,
		&entity.AttributeYear2,
		&entity.HexColor2,
		&entity.ZoomLevel,
		&entity.CenterCoordinates,
		&entity.IsPublic,
		&entity.ThumbnailKey,
		&entity.CreatedAt,
		&entity.UpdatedAt,
		&entity.FavoriteCount,
	)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// # Map Lifecycle

// Insert persists a new map. The error is returned unclassified so the
// service's save-with-retry loop can inspect the violated constraint name.
func (repository *repository) Insert(context context.Context, entity *Map) error {
	m := schema.Maps
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING %s, %s`,
		m.Table, m.ID, m.OwnerID, m.Title,
		m.PrimaryDatasetID, m.AttributeName1, m.AttributeYear1, m.HexColor1,
		m.SecondaryDatasetID, m.AttributeName2, m.AttributeYear2, m.HexColor2,
		m.ZoomLevel, m.CenterCoordinates, m.IsPublic,
		m.CreatedAt, m.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		entity.ID,
		entity.OwnerID,
		entity.Title,
		entity.PrimaryDatasetID,
		entity.AttributeName1,
		entity.AttributeYear1,
		entity.HexColor1,
		entity.SecondaryDatasetID,
		entity.AttributeName2,
		entity.AttributeYear2,
		entity.HexColor2,
		entity.ZoomLevel,
		entity.CenterCoordinates,
		entity.IsPublic,
	).Scan(&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("map_insert: %w", err)
	}
	return nil
}

// Update persists map changes. Like Insert, constraint violations pass
// through unclassified for the retitle retry loop.
func (repository *repository) Update(context context.Context, entity *Map) error {
	m := schema.Maps
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
		    %s = $7, %s = $8, %s = $9, %s = $10,
		    %s = $11, %s = $12, %s = $13,
		    %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		m.Table,
		m.Title, m.PrimaryDatasetID, m.AttributeName1, m.AttributeYear1, m.HexColor1,
		m.SecondaryDatasetID, m.AttributeName2, m.AttributeYear2, m.HexColor2,
		m.ZoomLevel, m.CenterCoordinates, m.IsPublic,
		m.UpdatedAt,
		m.ID,
		m.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		entity.ID,
		entity.Title,
		entity.PrimaryDatasetID,
		entity.AttributeName1,
		entity.AttributeYear1,
		entity.HexColor1,
		entity.SecondaryDatasetID,
		entity.AttributeName2,
		entity.AttributeYear2,
		entity.HexColor2,
		entity.ZoomLevel,
		entity.CenterCoordinates,
		entity.IsPublic,
	).Scan(&entity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.ErrNotFound
		}
		return fmt.Errorf("map_update: %w", err)
	}
	return nil
}

func (repository *repository) SetThumbnail(context context.Context, mapID, key string) error {
	m := schema.Maps
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		m.Table, m.ThumbnailKey, m.UpdatedAt, m.ID,
	)

	tag, err := repository.pool.Exec(context, query, mapID, key)
	if err != nil {
		return dberr.Wrap(err, "map_set_thumbnail")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *repository) FindByID(context context.Context, id string) (*Map, error) {
	m := schema.Maps
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.%s = $1`,
		mapColumns(), m.Table, m.ID,
	)

	entity, err := scanMap(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "map_find_by_id")
	}
	return entity, nil
}

// # Listing

func (repository *repository) ListVisible(context context.Context, viewerID string) ([]*Map, error) {
	m := schema.Maps
	f := schema.MapFavorites

	var query string
	var args []any
	if viewerID == "" {
		query = fmt.Sprintf(`
			SELECT %s FROM %s m
			WHERE m.%s
			ORDER BY m.%s DESC`,
			mapColumns(), m.Table, m.IsPublic, m.CreatedAt,
		)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s m
			WHERE m.%s OR m.%s = $1
			   OR EXISTS (SELECT 1 FROM %s f WHERE f.%s = m.%s AND f.%s = $1)
			ORDER BY m.%s DESC`,
			mapColumns(), m.Table,
			m.IsPublic, m.OwnerID,
			f.Table, f.EntityID, m.ID, f.UserID,
			m.CreatedAt,
		)
		args = append(args, viewerID)
	}

	return repository.queryMaps(context, query, args...)
}

func (repository *repository) ListPublic(context context.Context) ([]*Map, error) {
	m := schema.Maps
	query := fmt.Sprintf(`
		SELECT %s FROM %s m
		WHERE m.%s
		ORDER BY m.%s DESC`,
		mapColumns(), m.Table, m.IsPublic, m.CreatedAt,
	)
	return repository.queryMaps(context, query)
}

func (repository *repository) queryMaps(context context.Context, query string, args ...any) ([]*Map, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "map_list")
	}
	defer rows.Close()

	maps := make([]*Map, 0)
	for rows.Next() {
		entity, err := scanMap(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "map_list_scan")
		}
		maps = append(maps, entity)
	}
	return maps, dberr.Wrap(rows.Err(), "map_list_rows")
}

// # Favorites

func (repository *repository) FavoriteIDs(context context.Context, userID string) (map[string]struct{}, error) {
	f := schema.MapFavorites
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		f.EntityID, f.Table, f.UserID,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "map_favorite_ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "map_favorite_ids_scan")
		}
		ids[id] = struct{}{}
	}
	return ids, dberr.Wrap(rows.Err(), "map_favorite_ids_rows")
}

func (repository *repository) AddFavorite(context context.Context, mapID, userID string) error {
	f := schema.MapFavorites
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		f.Table, f.ID, f.EntityID, f.UserID,
		f.EntityID, f.UserID,
	)

	_, err := repository.pool.Exec(context, query, uuid.New(), mapID, userID)
	return dberr.Wrap(err, "map_add_favorite")
}

func (repository *repository) RemoveFavorite(context context.Context, mapID, userID string) error {
	f := schema.MapFavorites
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		f.Table, f.EntityID, f.UserID,
	)

	_, err := repository.pool.Exec(context, query, mapID, userID)
	return dberr.Wrap(err, "map_remove_favorite")
}

// # View Tracking

func (repository *repository) RecordView(context context.Context, mapID string, userID *string, ipAddress string) error {
	v := schema.MapViews
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)`,
		v.Table, v.ID, v.EntityID, v.UserID, v.IPAddress,
	)

	_, err := repository.pool.Exec(context, query, uuid.New(), mapID, userID, ipAddress)
	return dberr.Wrap(err, "map_record_view")
}

func (repository *repository) ViewStats(context context.Context, mapID string) (int, int, error) {
	v := schema.MapViews
	query := fmt.Sprintf(`
		SELECT COUNT(*), COUNT(DISTINCT %s)
		FROM %s
		WHERE %s = $1`,
		v.IPAddress, v.Table, v.EntityID,
	)

	var total, distinct int
	err := repository.pool.QueryRow(context, query, mapID).Scan(&total, &distinct)
	if err != nil {
		return 0, 0, dberr.Wrap(err, "map_view_stats")
	}
	return total, distinct, nil
}
