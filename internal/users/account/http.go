// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package account provides the HTTP delivery layer for profile and session management.

It implements the RESTful interface for users to interact with their account data,
their saved content, and their active sessions.

# Security

The /me endpoints require an active authentication session provided by the
RequireAuth middleware. Account deletion of other users requires admin rights.
*/
package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/middleware"
	requestutil "github.com/chorostat/chorostat/internal/platform/request"
	"github.com/chorostat/chorostat/internal/platform/respond"
	"github.com/chorostat/chorostat/internal/platform/validate"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public profile discovery
	router.Get("/users/{userID}", handler.getUserProfile)

	// Account management (authenticated)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", handler.getMe)
		r.Patch("/me", handler.updateMe)
		r.Delete("/me", handler.deleteMe)

		// Session security
		r.Get("/me/sessions", handler.listSessions)
		r.Delete("/me/sessions", handler.signOutEverywhere)
		r.Delete("/me/sessions/{sessionID}", handler.revokeSession)
	})

	// Administrative account management
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Patch("/users/{userID}", handler.updateUser)
		r.Delete("/users/{userID}", handler.deleteUser)
	})

	return router
}

// # User Profile Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full private profile of the authenticated user,
including owned and favorited map and dataset IDs.

Response:
  - 200: Profile: Fully hydrated profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

/*
PATCH /api/v1/me.

Description: Applies partial updates to the authenticated user's identity.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Username or email already in use
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	if input.Username != nil {
		v.MinLen("username", *input.Username, 3).MaxLen("username", *input.Username, 50)
	}
	if input.Email != nil {
		v.Email("email", *input.Email)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Username: input.Username,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/me.

Description: Performs a soft-deletion of the authenticated user's account.

Response:
  - 204: No Content: Account deleted successfully
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID, userID, requestutil.IsAdmin(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// publicProfile is the restricted projection exposed to other users.
type publicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

/*
GET /api/v1/users/{userID}.

Description: Retrieves public profile information for a specific user.
Email and role are withheld from public consumption.

Request:
  - userID: string (UUID)

Response:
  - 200: publicProfile: Public profile data
  - 404: ErrNotFound: User not found or account deleted
*/
func (handler *Handler) getUserProfile(writer http.ResponseWriter, request *http.Request) {
	userID := chi.URLParam(request, "userID")
	if userID == "" {
		respond.Error(writer, request, apperr.NotFound("User"))
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, publicProfile{
		ID:        profile.User.ID,
		Username:  profile.User.Username,
		CreatedAt: profile.User.CreatedAt,
	})
}

/*
PATCH /api/v1/users/{userID}.

Description: Administrative partial update of any account's identity fields.

Request:
  - userID: string (UUID)
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: User not found
  - 409: ErrConflict: Username or email already in use
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	targetID := chi.URLParam(request, "userID")

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	if input.Username != nil {
		v.MinLen("username", *input.Username, 3).MaxLen("username", *input.Username, 50)
	}
	if input.Email != nil {
		v.Email("email", *input.Email)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), targetID, UpdateProfileInput{
		Username: input.Username,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{userID}.

Description: Administrative soft-deletion of any account.

Request:
  - userID: string (UUID)

Response:
  - 204: No Content: Account deleted
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: User not found
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := chi.URLParam(request, "userID")

	if err := handler.accountService.DeleteAccount(request.Context(), claims.UserID, targetID, true); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Session Security Endpoints

/*
GET /api/v1/me/sessions.

Description: Enumerates all devices currently authenticated into the user's account.

Response:
  - 200: []SessionInfo: List of active device sessions
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.accountService.ListSessions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

/*
DELETE /api/v1/me/sessions/{sessionID}.

Description: Forces a sign-out on a specific device identified by its session ID.

Request:
  - sessionID: string (Session UUID)

Response:
  - 204: No Content: Session terminated successfully
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := chi.URLParam(request, "sessionID")

	if err := handler.accountService.RevokeSession(request.Context(), userID, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/me/sessions.

Description: Forces a global sign-out by revoking every refresh session,
including the caller's. The current access token remains usable until it
expires.

Response:
  - 204: No Content: All sessions terminated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) signOutEverywhere(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RevokeAllSessions(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
