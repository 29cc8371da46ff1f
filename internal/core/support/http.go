// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package support

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chorostat/chorostat/internal/platform/middleware"
	requestutil "github.com/chorostat/chorostat/internal/platform/request"
	"github.com/chorostat/chorostat/internal/platform/respond"
	"github.com/chorostat/chorostat/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for support tickets.
type Handler struct {
	service *Service
}

// NewHandler constructs a new support [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the ticket endpoints.
// Everything requires a signed-in user; the queue view requires an admin.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.file)
	router.Get("/", handler.listOwn)
	router.Post("/{ticketID}/close", handler.close)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)
		admin.Get("/queue", handler.queue)
	})

	return router
}

type ticketPayload struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (handler *Handler) file(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload ticketPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ticket := &Ticket{
		UserID:  &userID,
		Email:   payload.Email,
		Subject: payload.Subject,
		Body:    payload.Body,
	}
	if err := handler.service.File(request.Context(), ticket); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, ticket)
}

func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tickets, err := handler.service.ListOwn(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tickets)
}

func (handler *Handler) close(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Close(request.Context(),
		requestutil.ID(request, "ticketID"),
		userID,
		requestutil.IsAdmin(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) queue(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	tickets, total, err := handler.service.Queue(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, tickets, pagination.NewMeta(params.Page, params.Limit, total))
}
