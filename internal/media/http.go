// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
)

// Handler implements the HTTP layer for media.
type Handler struct {
	mediaService *Service
	optionalAuth func(http.Handler) http.Handler
}

// NewHandler constructs a new media [Handler].
func NewHandler(service *Service, optionalAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{mediaService: service, optionalAuth: optionalAuth}
}

// VideoRoutes returns the router mounted at /videos.
//
// # Endpoints
//   - GET /{videoId} : Video detail, counts a view.
func (handler *Handler) VideoRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.optionalAuth)

	router.Get("/{videoId}", handler.getVideo)

	return router
}

/*
GET /api/v1/videos/{videoId}.

Response:
  - 200: VideoDetail
  - 400: ValidationError: Malformed ID
  - 404: NotFound
*/
func (handler *Handler) getVideo(writer http.ResponseWriter, request *http.Request) {
	videoID, err := requestutil.ID(request, "videoId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	video, err := handler.mediaService.GetVideo(request.Context(), requestutil.Context(request), videoID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, video)
}
