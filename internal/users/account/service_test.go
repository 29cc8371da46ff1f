// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/users/account"
	"github.com/chorostat/chorostat/internal/users/auth"
)

// # Test Doubles

type fakeAccountRepo struct {
	users   map[string]*auth.User
	deleted map[string]bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{users: make(map[string]*auth.User), deleted: make(map[string]bool)}
}

func (repo *fakeAccountRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repo.users[id]
	if !ok || repo.deleted[id] {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (repo *fakeAccountRepo) Update(_ context.Context, user *auth.User) error {
	stored := *user
	repo.users[user.ID] = &stored
	return nil
}

func (repo *fakeAccountRepo) SoftDelete(_ context.Context, id string) error {
	repo.deleted[id] = true
	return nil
}

type fakeContentRepo struct {
	ownedMaps        map[string][]string
	favoriteMaps     map[string][]string
	ownedDatasets    map[string][]string
	favoriteDatasets map[string][]string
}

func (repo *fakeContentRepo) OwnedMapIDs(_ context.Context, userID string) ([]string, error) {
	return repo.ownedMaps[userID], nil
}

func (repo *fakeContentRepo) FavoriteMapIDs(_ context.Context, userID string) ([]string, error) {
	return repo.favoriteMaps[userID], nil
}

func (repo *fakeContentRepo) OwnedDatasetIDs(_ context.Context, userID string) ([]string, error) {
	return repo.ownedDatasets[userID], nil
}

func (repo *fakeContentRepo) FavoriteDatasetIDs(_ context.Context, userID string) ([]string, error) {
	return repo.favoriteDatasets[userID], nil
}

type fakeSessionRepo struct {
	revokedAll []string
	revoked    []string
}

func (repo *fakeSessionRepo) FindActiveByUserID(context.Context, string) ([]account.SessionInfo, error) {
	return []account.SessionInfo{}, nil
}

func (repo *fakeSessionRepo) Revoke(_ context.Context, _, sessionID string) error {
	repo.revoked = append(repo.revoked, sessionID)
	return nil
}

func (repo *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	repo.revokedAll = append(repo.revokedAll, userID)
	return nil
}

// # Helpers

func newService(users *fakeAccountRepo, content *fakeContentRepo, sessions *fakeSessionRepo) *account.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return account.NewService(users, content, sessions, logger)
}

func seedUser(repo *fakeAccountRepo, id, username string) {
	repo.users[id] = &auth.User{ID: id, Username: username, Email: username + "@example.com"}
}

// # Profile

/*
TestService_GetProfile_AssemblesContentIDs verifies the profile view joins
the identity with every owned and favorited map and dataset ID.
*/
func TestService_GetProfile_AssemblesContentIDs(t *testing.T) {
	users := newFakeAccountRepo()
	seedUser(users, "user-1", "carto")

	content := &fakeContentRepo{
		ownedMaps:        map[string][]string{"user-1": {"map-a", "map-b"}},
		favoriteMaps:     map[string][]string{"user-1": {"map-c"}},
		ownedDatasets:    map[string][]string{"user-1": {"ds-1"}},
		favoriteDatasets: map[string][]string{"user-1": {"ds-2", "ds-3"}},
	}
	service := newService(users, content, &fakeSessionRepo{})

	profile, err := service.GetProfile(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "carto", profile.User.Username)
	assert.Equal(t, []string{"map-a", "map-b"}, profile.OwnedMapIDs)
	assert.Equal(t, []string{"map-c"}, profile.FavoriteMapIDs)
	assert.Equal(t, []string{"ds-1"}, profile.OwnedDatasetIDs)
	assert.Equal(t, []string{"ds-2", "ds-3"}, profile.FavoriteDatasetIDs)
}

/*
TestService_GetProfile_UnknownUser propagates the not-found error.
*/
func TestService_GetProfile_UnknownUser(t *testing.T) {
	service := newService(newFakeAccountRepo(), &fakeContentRepo{}, &fakeSessionRepo{})

	_, err := service.GetProfile(context.Background(), "ghost")

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_UpdateProfile_AppliesDeltas verifies partial updates leave
untouched fields intact.
*/
func TestService_UpdateProfile_AppliesDeltas(t *testing.T) {
	users := newFakeAccountRepo()
	seedUser(users, "user-1", "carto")
	service := newService(users, &fakeContentRepo{}, &fakeSessionRepo{})

	newName := "cartographer"
	user, err := service.UpdateProfile(context.Background(), "user-1", account.UpdateProfileInput{
		Username: &newName,
	})

	require.NoError(t, err)
	assert.Equal(t, "cartographer", user.Username)
	assert.Equal(t, "carto@example.com", user.Email, "email unchanged when not provided")
}

// # Account Deletion

/*
TestService_DeleteAccount_OwnerAndAdmin covers the authorization matrix:
owners and administrators may delete, other members may not.
*/
func TestService_DeleteAccount_OwnerAndAdmin(t *testing.T) {
	users := newFakeAccountRepo()
	seedUser(users, "user-1", "carto")
	seedUser(users, "user-2", "viewer")
	sessions := &fakeSessionRepo{}
	service := newService(users, &fakeContentRepo{}, sessions)

	// A stranger cannot delete the account.
	err := service.DeleteAccount(context.Background(), "user-2", "user-1", false)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.False(t, users.deleted["user-1"])

	// The owner can.
	require.NoError(t, service.DeleteAccount(context.Background(), "user-1", "user-1", false))
	assert.True(t, users.deleted["user-1"])
	assert.Equal(t, []string{"user-1"}, sessions.revokedAll, "deletion forces a global sign-out")

	// An administrator can delete any account.
	require.NoError(t, service.DeleteAccount(context.Background(), "admin-1", "user-2", true))
	assert.True(t, users.deleted["user-2"])
}

/*
TestService_RevokeAllSessions verifies the global sign-out reaches the
session store.
*/
func TestService_RevokeAllSessions(t *testing.T) {
	sessions := &fakeSessionRepo{}
	service := newService(newFakeAccountRepo(), &fakeContentRepo{}, sessions)

	require.NoError(t, service.RevokeAllSessions(context.Background(), "user-1"))
	assert.Equal(t, []string{"user-1"}, sessions.revokedAll)
}

/*
TestService_DeleteAccount_UnknownTarget ensures deletion of a missing
account reports not found rather than silently succeeding.
*/
func TestService_DeleteAccount_UnknownTarget(t *testing.T) {
	service := newService(newFakeAccountRepo(), &fakeContentRepo{}, &fakeSessionRepo{})

	err := service.DeleteAccount(context.Background(), "admin-1", "ghost", true)

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
