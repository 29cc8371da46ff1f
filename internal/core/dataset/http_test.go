// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorostat/chorostat/internal/core/dataset"
)

// # Route Fixtures

func newRouter(repo *fakeRepo) http.Handler {
	return dataset.NewHandler(newService(repo, &fakeGeoRepo{})).Routes()
}

func seedObservations(repo *fakeRepo, datasetID string) {
	repo.attributes = append(repo.attributes,
		dataset.Attribute{DatasetID: datasetID, GeoCodeID: 6, Name: "Unemployment", Value: 5.1, Year: intPtr(2020)},
		dataset.Attribute{DatasetID: datasetID, GeoCodeID: 6, Name: "Unemployment", Value: 4.8, Year: intPtr(2019)},
		dataset.Attribute{DatasetID: datasetID, GeoCodeID: 48, Name: "Unemployment", Value: 5.3, Year: intPtr(2020)},
		dataset.Attribute{DatasetID: datasetID, GeoCodeID: 6, Name: "Median Income", Value: 64100, Year: intPtr(2020)},
	)
}

func doGet(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

// # Attribute Discovery Routes

/*
TestRoutes_Years verifies the years endpoint reads its attribute name from
the query string and responds with the descending year list.
*/
func TestRoutes_Years(t *testing.T) {
	repo := newFakeRepo()
	seedDataset(repo, "ds-1", "user-1")
	seedObservations(repo, "ds-1")
	router := newRouter(repo)

	recorder := doGet(t, router, "/ds-1/attributes/years?name=Unemployment")

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data []int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, []int{2020, 2019}, envelope.Data)
}

/*
TestRoutes_Years_MissingName verifies the validation error when the query
parameter is absent.
*/
func TestRoutes_Years_MissingName(t *testing.T) {
	repo := newFakeRepo()
	seedDataset(repo, "ds-1", "user-1")
	router := newRouter(repo)

	recorder := doGet(t, router, "/ds-1/attributes/years")

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
}

/*
TestRoutes_Summary_NameFilter verifies the ?names= query filter narrows the
summary to the requested attributes.
*/
func TestRoutes_Summary_NameFilter(t *testing.T) {
	repo := newFakeRepo()
	seedDataset(repo, "ds-1", "user-1")
	seedObservations(repo, "ds-1")
	router := newRouter(repo)

	recorder := doGet(t, router, "/ds-1/attributes/summary?names=Median%20Income")

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data []dataset.SummaryRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Median Income", envelope.Data[0].AttributeName)
	assert.Equal(t, 1, envelope.Data[0].AttributeCount)
}

/*
TestRoutes_Summary_YearFilter verifies the repeated ?year= parameters narrow
the summary by observation year.
*/
func TestRoutes_Summary_YearFilter(t *testing.T) {
	repo := newFakeRepo()
	seedDataset(repo, "ds-1", "user-1")
	seedObservations(repo, "ds-1")
	router := newRouter(repo)

	recorder := doGet(t, router, "/ds-1/attributes/summary?year=2019")

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data []dataset.SummaryRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Unemployment", envelope.Data[0].AttributeName)
	require.NotNil(t, envelope.Data[0].AttributeYear)
	assert.Equal(t, 2019, *envelope.Data[0].AttributeYear)
}
