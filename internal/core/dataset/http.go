// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chorostat/chorostat/internal/core/geocode"
	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/constants"
	"github.com/chorostat/chorostat/internal/platform/middleware"
	requestutil "github.com/chorostat/chorostat/internal/platform/request"
	"github.com/chorostat/chorostat/internal/platform/respond"
	"github.com/chorostat/chorostat/internal/platform/validate"
	"github.com/chorostat/chorostat/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for the dataset catalogue. It translates
// web requests into domain service calls.
type Handler struct {
	service *Service
}

// NewHandler constructs a new dataset [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the dataset endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Browse, popular, aggregation reads. Anonymous
//     visitors see the curated catalogue only.
//   - Management (Authenticated): Creation, metadata edits, favorites, and
//     observation ingestion require a signed-in user; ownership is enforced
//     at the service layer.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Discovery
	router.Get("/", handler.browse)
	router.Get("/popular", handler.popular)
	router.Get("/{datasetID}", handler.get)
	router.Get("/{datasetID}/attributes/names", handler.names)
	router.Get("/{datasetID}/attributes/years", handler.years)
	router.Get("/{datasetID}/attributes/summary", handler.summary)

	// ## Management
	router.Group(func(authenticated chi.Router) {
		authenticated.Use(middleware.RequireAuth)

		authenticated.Post("/", handler.create)
		authenticated.Put("/{datasetID}", handler.update)

		authenticated.Put("/{datasetID}/favorite", handler.favorite)
		authenticated.Delete("/{datasetID}/favorite", handler.unfavorite)

		authenticated.Post("/{datasetID}/attributes", handler.ingestJSON)
		authenticated.Post("/{datasetID}/attributes/upload", handler.ingestUpload)
		authenticated.Delete("/{datasetID}/attributes/{attributeID}", handler.deleteAttribute)
	})

	return router
}

// # Payloads

type datasetPayload struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Organization     string `json:"organization"`
	SourceURL        string `json:"source_url"`
	GeographicLevel  string `json:"geographic_level"`
	DisplayByDefault bool   `json:"display_by_default"`
	IsPublic         bool   `json:"is_public"`
}

func (payload *datasetPayload) toEntity() *Dataset {
	return &Dataset{
		Name:             payload.Name,
		Description:      payload.Description,
		Organization:     payload.Organization,
		SourceURL:        payload.SourceURL,
		GeographicLevel:  parseLevel(payload.GeographicLevel),
		DisplayByDefault: payload.DisplayByDefault,
		IsPublic:         payload.IsPublic,
	}
}

type ingestPayload struct {
	Records []Record `json:"records"`
}

// # Discovery Endpoints

func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	listing, err := handler.service.Browse(request.Context(), requestutil.OptionalUserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

func (handler *Handler) popular(writer http.ResponseWriter, request *http.Request) {
	datasets, err := handler.service.Popular(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, datasets)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	dataset, err := handler.service.Get(request.Context(),
		requestutil.ID(request, "datasetID"),
		requestutil.OptionalUserID(request),
		clientIP(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, dataset)
}

func (handler *Handler) names(writer http.ResponseWriter, request *http.Request) {
	names, err := handler.service.Names(request.Context(), requestutil.ID(request, "datasetID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, names)
}

func (handler *Handler) years(writer http.ResponseWriter, request *http.Request) {
	name := request.URL.Query().Get("name")
	if name == "" {
		respond.Error(writer, request, validate.RequiredError("name", "query parameter 'name' is required"))
		return
	}

	years, err := handler.service.YearsFor(request.Context(), requestutil.ID(request, "datasetID"), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, years)
}

// summary supports optional filters: ?names=a,b narrows by attribute name,
// repeated ?year=2019&year=2020 parameters narrow by observation year.
func (handler *Handler) summary(writer http.ResponseWriter, request *http.Request) {
	names := query.StringSlice(request.URL.Query().Get("names"))
	years := query.IntSlice(request.URL.Query()["year"])

	summary, err := handler.service.Summary(request.Context(), requestutil.ID(request, "datasetID"), names, years)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

// # Management Endpoints

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload datasetPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	dataset := payload.toEntity()
	dataset.OwnerID = &userID

	if err := handler.service.Create(request.Context(), dataset); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, dataset)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload datasetPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	dataset := payload.toEntity()
	dataset.ID = requestutil.ID(request, "datasetID")

	if err := handler.service.Update(request.Context(), dataset, userID, requestutil.IsAdmin(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, dataset)
}

func (handler *Handler) favorite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Favorite(request.Context(), requestutil.ID(request, "datasetID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) unfavorite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unfavorite(request.Context(), requestutil.ID(request, "datasetID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) deleteAttribute(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.DeleteAttribute(request.Context(),
		requestutil.ID(request, "datasetID"),
		requestutil.ID(request, "attributeID"),
		userID,
		requestutil.IsAdmin(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Ingestion Endpoints

// ingestJSON accepts a JSON array of observation records.
func (handler *Handler) ingestJSON(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload ingestPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.BulkIngest(request.Context(),
		requestutil.ID(request, "datasetID"),
		userID,
		requestutil.IsAdmin(request),
		payload.Records,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, report)
}

// ingestUpload accepts a multipart form with a CSV or XLSX file under the
// "file" field.
func (handler *Handler) ingestUpload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.Unprocessable("multipart form could not be parsed"))
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("file", "form field 'file' is required"))
		return
	}
	defer file.Close()

	records, err := decodeUpload(file, header.Filename)
	if err != nil {
		respond.Error(writer, request, apperr.Unprocessable(err.Error()))
		return
	}

	report, err := handler.service.BulkIngest(request.Context(),
		requestutil.ID(request, "datasetID"),
		userID,
		requestutil.IsAdmin(request),
		records,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, report)
}

// decodeUpload picks the spreadsheet parser from the file extension.
func decodeUpload(file io.Reader, filename string) ([]Record, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes))
		if err != nil {
			return nil, err
		}
		return ParseXLSX(data)
	}
	return ParseCSV(io.LimitReader(file, constants.MaxUploadBytes))
}

// # Helpers

func parseLevel(raw string) geocode.Level {
	return geocode.Level(strings.ToLower(strings.TrimSpace(raw)))
}

// clientIP prefers the proxy-forwarded address set by the RealIP middleware.
func clientIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}
	host := request.RemoteAddr
	if index := strings.LastIndex(host, ":"); index > 0 {
		host = host[:index]
	}
	return host
}
