// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package geomap_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorostat/chorostat/internal/core/geomap"
	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/database/schema"
	"github.com/chorostat/chorostat/internal/platform/objectstore"
)

// # Test Doubles

// fakeRepo keeps maps in memory and reproduces the (title, owner) unique
// constraint the way Postgres reports it.
type fakeRepo struct {
	maps        map[string]*geomap.Map
	titles      map[string]bool // (owner|title) pairs in use
	favoriteIDs map[string]struct{}
	thumbnails  map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		maps:        make(map[string]*geomap.Map),
		titles:      make(map[string]bool),
		favoriteIDs: make(map[string]struct{}),
		thumbnails:  make(map[string]string),
	}
}

func titleKey(ownerID *string, title string) string {
	owner := ""
	if ownerID != nil {
		owner = *ownerID
	}
	return owner + "|" + title
}

func titleViolation() error {
	return fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: schema.Maps.TitleOwnerConstraint,
	})
}

func (repo *fakeRepo) Insert(_ context.Context, entity *geomap.Map) error {
	if repo.titles[titleKey(entity.OwnerID, entity.Title)] {
		return titleViolation()
	}
	repo.titles[titleKey(entity.OwnerID, entity.Title)] = true
	stored := *entity
	repo.maps[entity.ID] = &stored
	return nil
}

func (repo *fakeRepo) Update(_ context.Context, entity *geomap.Map) error {
	existing, ok := repo.maps[entity.ID]
	if !ok {
		return apperr.NotFound("Map")
	}
	if entity.Title != existing.Title && repo.titles[titleKey(entity.OwnerID, entity.Title)] {
		return titleViolation()
	}
	delete(repo.titles, titleKey(existing.OwnerID, existing.Title))
	repo.titles[titleKey(entity.OwnerID, entity.Title)] = true
	stored := *entity
	repo.maps[entity.ID] = &stored
	return nil
}

func (repo *fakeRepo) SetThumbnail(_ context.Context, mapID, key string) error {
	entity, ok := repo.maps[mapID]
	if !ok {
		return apperr.NotFound("Map")
	}
	entity.ThumbnailKey = &key
	repo.thumbnails[mapID] = key
	return nil
}

func (repo *fakeRepo) FindByID(_ context.Context, id string) (*geomap.Map, error) {
	entity, ok := repo.maps[id]
	if !ok {
		return nil, apperr.NotFound("Map")
	}
	copied := *entity
	return &copied, nil
}

func (repo *fakeRepo) ListVisible(context.Context, string) ([]*geomap.Map, error) {
	all := make([]*geomap.Map, 0, len(repo.maps))
	for _, entity := range repo.maps {
		all = append(all, entity)
	}
	return all, nil
}

func (repo *fakeRepo) ListPublic(ctx context.Context) ([]*geomap.Map, error) {
	return repo.ListVisible(ctx, "")
}

func (repo *fakeRepo) FavoriteIDs(context.Context, string) (map[string]struct{}, error) {
	return repo.favoriteIDs, nil
}

func (repo *fakeRepo) AddFavorite(_ context.Context, mapID, _ string) error {
	repo.favoriteIDs[mapID] = struct{}{}
	return nil
}

func (repo *fakeRepo) RemoveFavorite(_ context.Context, mapID, _ string) error {
	delete(repo.favoriteIDs, mapID)
	return nil
}

func (repo *fakeRepo) RecordView(context.Context, string, *string, string) error { return nil }

func (repo *fakeRepo) ViewStats(context.Context, string) (int, int, error) { return 0, 0, nil }

func newService(repo *fakeRepo) (*geomap.Service, *objectstore.MemoryStore) {
	store := objectstore.NewMemoryStore("http://localhost/assets")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return geomap.NewService(repo, store, logger), store
}

func validMap(title, owner string) *geomap.Map {
	return &geomap.Map{
		Title:            title,
		OwnerID:          &owner,
		PrimaryDatasetID: "0190f1d2-0000-7000-8000-000000000001",
		AttributeName1:   "Unemployment",
		HexColor1:        "#2b6cb0",
		ZoomLevel:        4,
	}
}

// # Save Protocol

/*
TestService_Create_SequentialTitleSequence verifies the observable rename
sequence for repeated identical saves: T, T(1), T(2), T(3).
*/
func TestService_Create_SequentialTitleSequence(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	var persisted []string
	for i := 0; i < 4; i++ {
		entity := validMap("Election Turnout", "user-1")
		require.NoError(t, service.Create(context.Background(), entity))
		persisted = append(persisted, entity.Title)
	}

	assert.Equal(t, []string{
		"Election Turnout",
		"Election Turnout(1)",
		"Election Turnout(2)",
		"Election Turnout(3)",
	}, persisted)
}

/*
TestService_Create_SuffixedTitleRestartsFromBase verifies that a collision
on an already numbered title restarts the sequence from the bare base
instead of stacking suffixes: saving "Rain(2)" twice yields "Rain(1)",
never "Rain(2)(1)".
*/
func TestService_Create_SuffixedTitleRestartsFromBase(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	owner := "user-1"
	repo.titles[titleKey(&owner, "Rain(2)")] = true
	repo.titles[titleKey(&owner, "Rain(2)(1)")] = true

	entity := validMap("Rain(2)", owner)
	require.NoError(t, service.Create(context.Background(), entity))

	assert.Equal(t, "Rain(1)", entity.Title)
}

/*
TestService_Create_SuffixedTitleSkipsTakenVariants verifies that when the
bare base and its first variants are taken, the sequence continues past
the requested title rather than reusing it.
*/
func TestService_Create_SuffixedTitleSkipsTakenVariants(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	owner := "user-1"
	for _, taken := range []string{"Rain", "Rain(1)", "Rain(2)"} {
		repo.titles[titleKey(&owner, taken)] = true
	}

	entity := validMap("Rain(2)", owner)
	require.NoError(t, service.Create(context.Background(), entity))

	assert.Equal(t, "Rain(3)", entity.Title)
}

/*
TestService_Create_ValidatesLayers verifies rejection of a map without a
primary color scale and of a partial secondary layer.
*/
func TestService_Create_ValidatesLayers(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	// Missing hex color.
	entity := validMap("Turnout", "user-1")
	entity.HexColor1 = "not-a-color"
	require.Error(t, service.Create(context.Background(), entity))

	// Secondary attribute without its dataset and color.
	entity = validMap("Turnout", "user-1")
	name := "Median Income"
	entity.AttributeName2 = &name
	require.Error(t, service.Create(context.Background(), entity))

	assert.Empty(t, repo.maps)
}

/*
TestService_Update_RetitleDisambiguates verifies that renaming a map onto a
sibling's title yields a numbered variant instead of an error.
*/
func TestService_Update_RetitleDisambiguates(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	first := validMap("Alpha", "user-1")
	require.NoError(t, service.Create(context.Background(), first))
	second := validMap("Beta", "user-1")
	require.NoError(t, service.Create(context.Background(), second))

	second.Title = "Alpha"
	require.NoError(t, service.Update(context.Background(), second, "user-1", false))

	assert.Equal(t, "Alpha(1)", second.Title)
}

/*
TestService_Update_RequiresOwnership verifies that only the owner or an
admin may edit a map.
*/
func TestService_Update_RequiresOwnership(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	entity := validMap("Alpha", "user-1")
	require.NoError(t, service.Create(context.Background(), entity))

	entity.ZoomLevel = 7
	err := service.Update(context.Background(), entity, "intruder", false)
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	require.NoError(t, service.Update(context.Background(), entity, "intruder", true))
}

// # Thumbnails

/*
TestService_SaveThumbnail verifies upload, key recording, and URL
resolution through the object store.
*/
func TestService_SaveThumbnail(t *testing.T) {
	repo := newFakeRepo()
	service, store := newService(repo)

	entity := validMap("Prix de l'essence", "user-1")
	require.NoError(t, service.Create(context.Background(), entity))

	// "PNG" payload; content is opaque to the store.
	url, err := service.SaveThumbnail(context.Background(), entity.ID, "aGVsbG8=", "user-1", false)
	require.NoError(t, err)

	assert.NotEmpty(t, url)
	assert.Equal(t, 1, store.Len())

	// Key derives from the slugified title plus the map id.
	key := repo.thumbnails[entity.ID]
	assert.Contains(t, key, "prix-de-l-essence")
	assert.Contains(t, key, entity.ID)
}

/*
TestService_SaveThumbnail_RejectsInvalidPayload verifies base64 screening.
*/
func TestService_SaveThumbnail_RejectsInvalidPayload(t *testing.T) {
	repo := newFakeRepo()
	service, store := newService(repo)

	entity := validMap("Turnout", "user-1")
	require.NoError(t, service.Create(context.Background(), entity))

	_, err := service.SaveThumbnail(context.Background(), entity.ID, "not base64 !!!", "user-1", false)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

// # Discovery

/*
TestService_Popular verifies the derived-favorites ranking contract: stable
ties, zero counts included, capped at the popularity list size.
*/
func TestService_Popular(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newService(repo)

	titles := []string{"A", "B", "C"}
	favorites := map[string]int{"A": 2, "B": 0, "C": 5}
	byTitle := make(map[string]string)

	for _, title := range titles {
		entity := validMap(title, "user-1")
		entity.IsPublic = true
		require.NoError(t, service.Create(context.Background(), entity))
		byTitle[title] = entity.ID
	}
	for title, count := range favorites {
		repo.maps[byTitle[title]].FavoriteCount = count
	}

	ranked, err := service.Popular(context.Background())
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, "C", ranked[0].Title)
	assert.Equal(t, "A", ranked[1].Title)
	assert.Equal(t, "B", ranked[2].Title) // zero favorites still ranks
}
