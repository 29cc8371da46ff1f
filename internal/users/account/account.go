// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package account handles user profile management and security settings.

It provides functionalities for users to view and update their private identity
data, review the content they have built or favorited, and manage their active
device sessions.

# Architecture

  - Entities: Profile (DTO), SessionInfo (DTO).
  - Domain: This package depends on the auth package for the User entity.
  - Security: Provides session transparency and revocation mechanisms.
*/
package account

import (
	"context"
	"time"

	"github.com/chorostat/chorostat/internal/users/auth"
)

// # Domain Entities

// Profile is the private account view: the identity plus the IDs of every
// map and dataset the user owns or has favorited.
type Profile struct {
	User *auth.User `json:"user"`

	OwnedMapIDs        []string `json:"owned_map_ids"`
	FavoriteMapIDs     []string `json:"favorite_map_ids"`
	OwnedDatasetIDs    []string `json:"owned_dataset_ids"`
	FavoriteDatasetIDs []string `json:"favorite_dataset_ids"`
}

// SessionInfo provides a safety-mapped view of an active user session.
// It omits sensitive token hashes for transport.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
//
// The auth package's Postgres user repository satisfies it, so both packages
// share a single storage implementation for the users table.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}

// ContentRepository resolves the map and dataset IDs attached to a profile.
type ContentRepository interface {
	/*
		OwnedMapIDs lists the IDs of every map the user created.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Map IDs, newest first
		  - error: Retrieval failures
	*/
	OwnedMapIDs(context context.Context, userID string) ([]string, error)

	/*
		FavoriteMapIDs lists the IDs of every map the user favorited.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Map IDs, newest first
		  - error: Retrieval failures
	*/
	FavoriteMapIDs(context context.Context, userID string) ([]string, error)

	/*
		OwnedDatasetIDs lists the IDs of every dataset the user created.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Dataset IDs, newest first
		  - error: Retrieval failures
	*/
	OwnedDatasetIDs(context context.Context, userID string) ([]string, error)

	/*
		FavoriteDatasetIDs lists the IDs of every dataset the user favorited.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Dataset IDs, newest first
		  - error: Retrieval failures
	*/
	FavoriteDatasetIDs(context context.Context, userID string) ([]string, error)
}

// SessionRepository defines the visibility and revocation contract for user sessions.
type SessionRepository interface {
	/*
		FindActiveByUserID lists all valid, non-expired sessions for a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []SessionInfo: List of active devices
		  - error: Retrieval errors
	*/
	FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error)

	/*
		Revoke marks a specific session as revoked.

		Parameters:
		  - context: context.Context
		  - userID: string (Security constraint: owner validation)
		  - sessionID: string

		Returns:
		  - error: Revocation failures
	*/
	Revoke(context context.Context, userID, sessionID string) error

	/*
		RevokeAll terminates every session for a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Revocation failures
	*/
	RevokeAll(context context.Context, userID string) error
}
