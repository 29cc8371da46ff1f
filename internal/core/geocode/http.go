package geocode

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/respond"
	"github.com/chorostat/chorostat/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the geo-code reference endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/resolve", handler.resolve)

	return router
}

// list handles GET /geo-codes?level=state|county
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	level := request.URL.Query().Get("level")
	if level == "" {
		level = string(LevelState)
	}

	validator := &validate.Validator{}
	validator.OneOf("level", level, string(LevelState), string(LevelCounty))
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	codes, err := handler.service.List(request.Context(), Level(level))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, codes)
}

// resolve handles GET /geo-codes/resolve?label=<free text>
func (handler *Handler) resolve(writer http.ResponseWriter, request *http.Request) {
	label := request.URL.Query().Get("label")
	if label == "" {
		respond.Error(writer, request, validate.RequiredError("label", "This field is required"))
		return
	}

	code, found, err := handler.service.Resolve(request.Context(), label)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !found {
		respond.Error(writer, request, apperr.NotFound("Geo code"))
		return
	}
	respond.OK(writer, code)
}
