// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package account (Postgres) implements the storage layer for profile metadata.

# Schema Table Mapping
  - maps / geographic_datasets: Ownership resolution for profile views.
  - map_favorites / geographic_dataset_favorites: Favorite resolution.
  - sessions: Active device sessions and security metadata.

The users table itself is served by the auth package's user repository, which
satisfies [AccountRepository].
*/
package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chorostat/chorostat/internal/platform/database/schema"
)

// # Repository Implementations

// PostgresContentRepository implements [ContentRepository] using pgx.
type PostgresContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new Postgres implementation for profile content lookups.
func NewContentRepository(pool *pgxpool.Pool) *PostgresContentRepository {
	return &PostgresContentRepository{pool: pool}
}

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new Postgres implementation for session auditing.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// # ContentRepository Methods

// queryIDs runs a single-column ID query and collects the results.
func (repository *PostgresContentRepository) queryIDs(context context.Context, query, userID, label string) ([]string, error) {
	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_content_repo_%s_failed: %w", label, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_content_repo_%s_scan_failed: %w", label, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_content_repo_%s_rows_failed: %w", label, err)
	}

	return ids, nil
}

/*
OwnedMapIDs lists the IDs of every map created by the user, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Map IDs
  - error: Retrieval failures
*/
func (repository *PostgresContentRepository) OwnedMapIDs(context context.Context, userID string) ([]string, error) {
	m := schema.Maps
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC",
		m.ID, m.Table, m.OwnerID, m.CreatedAt,
	)
	return repository.queryIDs(context, query, userID, "owned_maps")
}

/*
FavoriteMapIDs lists the IDs of every map favorited by the user, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Map IDs
  - error: Retrieval failures
*/
func (repository *PostgresContentRepository) FavoriteMapIDs(context context.Context, userID string) ([]string, error) {
	f := schema.MapFavorites
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC",
		f.EntityID, f.Table, f.UserID, f.CreatedAt,
	)
	return repository.queryIDs(context, query, userID, "favorite_maps")
}

/*
OwnedDatasetIDs lists the IDs of every dataset created by the user, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Dataset IDs
  - error: Retrieval failures
*/
func (repository *PostgresContentRepository) OwnedDatasetIDs(context context.Context, userID string) ([]string, error) {
	d := schema.GeographicDatasets
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC",
		d.ID, d.Table, d.OwnerID, d.CreatedAt,
	)
	return repository.queryIDs(context, query, userID, "owned_datasets")
}

/*
FavoriteDatasetIDs lists the IDs of every dataset favorited by the user, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Dataset IDs
  - error: Retrieval failures
*/
func (repository *PostgresContentRepository) FavoriteDatasetIDs(context context.Context, userID string) ([]string, error) {
	f := schema.DatasetFavorites
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC",
		f.EntityID, f.Table, f.UserID, f.CreatedAt,
	)
	return repository.queryIDs(context, query, userID, "favorite_datasets")
}

// # SessionRepository Methods

/*
FindActiveByUserID lists all valid, non-expired sessions for a user.

Description: Powers the "active devices" view in account settings.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionInfo: Transport-safe session projections, newest first
  - error: Retrieval failures
*/
func (repository *PostgresSessionRepository) FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error) {
	s := schema.Sessions
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
		ORDER BY %s DESC`,
		s.ID, s.UserAgent, s.IPAddress, s.CreatedAt, s.ExpiresAt,
		s.Table,
		s.UserID, s.IsRevoked, s.ExpiresAt,
		s.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_find_active_failed: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.UserAgent, &info.IPAddress, &info.CreatedAt, &info.ExpiresAt); err != nil {
			return nil, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_repo_rows_failed: %w", err)
	}

	return sessions, nil
}

/*
Revoke marks a specific session as revoked, scoped to its owner.

Description: The userID filter prevents a user from revoking another
account's session by guessing IDs.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresSessionRepository) Revoke(context context.Context, userID, sessionID string) error {
	s := schema.Sessions
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2",
		s.Table, s.IsRevoked, s.ID, s.UserID,
	)
	_, err := repository.pool.Exec(context, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeAll terminates every active session for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	s := schema.Sessions
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE",
		s.Table, s.IsRevoked, s.UserID, s.IsRevoked,
	)
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	return nil
}
