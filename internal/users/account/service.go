// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
//
// It ensures that profile reads, identity updates, account deletion, and
// session security cleanup follow established business constraints.
type Service struct {
	accountRepository AccountRepository
	contentRepository ContentRepository
	sessionRepository SessionRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	contentRepo ContentRepository,
	sessionRepo SessionRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		contentRepository: contentRepo,
		sessionRepository: sessionRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user, including the IDs
of every map and dataset they own or have favorited.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: The hydrated profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}

	if profile.OwnedMapIDs, err = service.contentRepository.OwnedMapIDs(context, userID); err != nil {
		return nil, fmt.Errorf("account_service_owned_maps_failed: %w", err)
	}
	if profile.FavoriteMapIDs, err = service.contentRepository.FavoriteMapIDs(context, userID); err != nil {
		return nil, fmt.Errorf("account_service_favorite_maps_failed: %w", err)
	}
	if profile.OwnedDatasetIDs, err = service.contentRepository.OwnedDatasetIDs(context, userID); err != nil {
		return nil, fmt.Errorf("account_service_owned_datasets_failed: %w", err)
	}
	if profile.FavoriteDatasetIDs, err = service.contentRepository.FavoriteDatasetIDs(context, userID); err != nil {
		return nil, fmt.Errorf("account_service_favorite_datasets_failed: %w", err)
	}

	return profile, nil
}

// UpdateProfileInput defines the mutable subset of user identity fields.
type UpdateProfileInput struct {
	Username *string
	Email    *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Username != nil {
		user.Username = *input.Username
	}

	// Apply delta updates
	if input.Email != nil {
		user.Email = *input.Email
	}

	// Persist changes
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
DeleteAccount performs a soft-deletion of a user account.

Description: Users may delete their own account; administrators may delete
any account. The deletion flags the row and immediately terminates all active
security sessions to force a global sign-out.

Parameters:
  - context: context.Context
  - actorID: string (Authenticated caller)
  - targetID: string (Account to delete)
  - actorIsAdmin: bool

Returns:
  - error: Forbidden or execution failures
*/
func (service *Service) DeleteAccount(context context.Context, actorID, targetID string, actorIsAdmin bool) error {
	if actorID != targetID && !actorIsAdmin {
		return apperr.Forbidden("Accounts can only be deleted by their owner or an administrator")
	}

	// Confirm the target exists before flagging it.
	if _, err := service.accountRepository.FindByID(context, targetID); err != nil {
		return err
	}

	if err := service.accountRepository.SoftDelete(context, targetID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	// Force global revocation of sessions for the deleted account
	_ = service.sessionRepository.RevokeAll(context, targetID)

	service.logger.Warn("user_account_deleted",
		slog.String("user_id", targetID),
		slog.String("actor_id", actorID),
	)

	return nil
}

// # Session Security

/*
ListSessions provides a list of all active device sessions for the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionInfo: List of active devices
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, userID string) ([]SessionInfo, error) {
	sessions, err := service.sessionRepository.FindActiveByUserID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	return sessions, nil
}

/*
RevokeSession terminates a specific user session by its ID.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	if err := service.sessionRepository.Revoke(context, userID, sessionID); err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}

	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return nil
}

/*
RevokeAllSessions terminates every session of the user, forcing a global
sign-out. Outstanding access tokens stay valid until they expire, but no
refresh is possible afterwards.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeAllSessions(context context.Context, userID string) error {
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("account_service_revoke_all_failed: %w", err)
	}

	service.logger.Info("user_all_sessions_revoked", slog.String("user_id", userID))

	return nil
}
