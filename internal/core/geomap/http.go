// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package geomap

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chorostat/chorostat/internal/platform/constants"
	"github.com/chorostat/chorostat/internal/platform/middleware"
	requestutil "github.com/chorostat/chorostat/internal/platform/request"
	"github.com/chorostat/chorostat/internal/platform/respond"
	"github.com/chorostat/chorostat/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the map builder and gallery.
type Handler struct {
	service *Service
}

// NewHandler constructs a new map [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the map endpoints.
//
// # Routing Strategy
//
//   - Gallery (Public): Browse, popular, and single-map reads.
//   - Builder (Authenticated): Saving, favorites, and thumbnail uploads
//     require a signed-in user; ownership is enforced at the service layer.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Gallery
	router.Get("/", handler.browse)
	router.Get("/popular", handler.popular)
	router.Get("/{mapID}", handler.get)

	// ## Builder
	router.Group(func(authenticated chi.Router) {
		authenticated.Use(middleware.RequireAuth)

		authenticated.Post("/", handler.create)
		authenticated.Put("/{mapID}", handler.update)
		authenticated.Put("/{mapID}/thumbnail", handler.saveThumbnail)

		authenticated.Put("/{mapID}/favorite", handler.favorite)
		authenticated.Delete("/{mapID}/favorite", handler.unfavorite)
	})

	return router
}

// # Payloads

type mapPayload struct {
	Title              string  `json:"title"`
	PrimaryDatasetID   string  `json:"primary_dataset_id"`
	AttributeName1     string  `json:"attribute_name_1"`
	AttributeYear1     *int    `json:"attribute_year_1"`
	HexColor1          string  `json:"hex_color_1"`
	SecondaryDatasetID *string `json:"secondary_dataset_id"`
	AttributeName2     *string `json:"attribute_name_2"`
	AttributeYear2     *int    `json:"attribute_year_2"`
	HexColor2          *string `json:"hex_color_2"`
	ZoomLevel          float64 `json:"zoom_level"`
	CenterCoordinates  string  `json:"center_coordinates"`
	IsPublic           bool    `json:"is_public"`
}

func (payload *mapPayload) toEntity() *Map {
	return &Map{
		Title:              strings.TrimSpace(payload.Title),
		PrimaryDatasetID:   payload.PrimaryDatasetID,
		AttributeName1:     payload.AttributeName1,
		AttributeYear1:     payload.AttributeYear1,
		HexColor1:          payload.HexColor1,
		SecondaryDatasetID: payload.SecondaryDatasetID,
		AttributeName2:     payload.AttributeName2,
		AttributeYear2:     payload.AttributeYear2,
		HexColor2:          payload.HexColor2,
		ZoomLevel:          payload.ZoomLevel,
		CenterCoordinates:  payload.CenterCoordinates,
		IsPublic:           payload.IsPublic,
	}
}

type thumbnailPayload struct {
	Image string `json:"image"` // base64 PNG
}

// # Gallery Endpoints

func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	listing, err := handler.service.Browse(request.Context(), requestutil.OptionalUserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

func (handler *Handler) popular(writer http.ResponseWriter, request *http.Request) {
	maps, err := handler.service.Popular(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, maps)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	entity, err := handler.service.Get(request.Context(),
		requestutil.ID(request, "mapID"),
		requestutil.OptionalUserID(request),
		clientIP(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entity)
}

// # Builder Endpoints

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload mapPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity := payload.toEntity()
	entity.OwnerID = &userID

	if err := handler.service.Create(request.Context(), entity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, entity)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload mapPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity := payload.toEntity()
	entity.ID = requestutil.ID(request, "mapID")

	if err := handler.service.Update(request.Context(), entity, userID, requestutil.IsAdmin(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entity)
}

func (handler *Handler) saveThumbnail(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload thumbnailPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if payload.Image == "" {
		respond.Error(writer, request, validate.RequiredError(FieldThumbnail, "field 'image' is required"))
		return
	}

	url, err := handler.service.SaveThumbnail(request.Context(),
		requestutil.ID(request, "mapID"),
		payload.Image,
		userID,
		requestutil.IsAdmin(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"thumbnail_url": url})
}

func (handler *Handler) favorite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Favorite(request.Context(), requestutil.ID(request, "mapID"), userID); err != nil {
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

	if err := handler.service.Unfavorite(request.Context(), requestutil.ID(request, "mapID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Helpers

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
