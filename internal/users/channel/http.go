// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package channel

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
)

// Handler implements the HTTP layer for channels.
type Handler struct {
	channelService *Service
	optionalAuth   func(http.Handler) http.Handler
	requireAuth    func(http.Handler) http.Handler
}

// NewHandler constructs a new channel [Handler].
func NewHandler(service *Service, optionalAuth, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{channelService: service, optionalAuth: optionalAuth, requireAuth: requireAuth}
}

// Routes returns a [chi.Router] configured with the channel endpoints.
//
// # Endpoints
//   - PATCH  /me         : Updates the caller's channel.
//   - DELETE /me         : Deletes the caller's account.
//   - GET    /{username} : Public profile, personalised when signed in.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(handler.requireAuth)
		r.Patch("/me", handler.updateMe)
		r.Delete("/me", handler.deleteMe)
	})

	router.Group(func(r chi.Router) {
		r.Use(handler.optionalAuth)
		r.Get("/{username}", handler.getProfile)
	})

	return router
}

/*
GET /api/v1/channels/{username}.

Response:
  - 200: Profile
  - 404: NotFound
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.channelService.Profile(
		request.Context(),
		requestutil.Context(request),
		requestutil.Param(request, "username"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

type updateMeRequest struct {
	DisplayName   *string `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
	CoverImageURL *string `json:"cover_image_url"`
}

/*
PATCH /api/v1/channels/me.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: Channel
  - 400: ValidationError
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	channel, err := handler.channelService.UpdateProfile(request.Context(), requestutil.Context(request), UpdateInput{
		DisplayName:   input.DisplayName,
		AvatarURL:     input.AvatarURL,
		CoverImageURL: input.CoverImageURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, channel)
}

/*
DELETE /api/v1/channels/me.

Response:
  - 204: Account deleted
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	if err := handler.channelService.DeleteAccount(request.Context(), requestutil.Context(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
