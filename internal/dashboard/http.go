// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
)

// Handler implements the HTTP layer for the creator dashboard.
type Handler struct {
	dashboardService *Service
	requireAuth      func(http.Handler) http.Handler
}

// NewHandler constructs a new dashboard [Handler].
func NewHandler(service *Service, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{dashboardService: service, requireAuth: requireAuth}
}

// Routes returns the router mounted at /dashboard.
//
// # Endpoints
//   - GET /stats : The caller's channel statistics.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.requireAuth)

	router.Get("/stats", handler.getStats)

	return router
}

/*
GET /api/v1/dashboard/stats.

Response:
  - 200: Stats
  - 401: Unauthorized
*/
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.dashboardService.ChannelStats(request.Context(), requestutil.Context(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}
