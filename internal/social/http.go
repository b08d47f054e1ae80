// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// Handler exposes subscriptions and likes over HTTP.
type Handler struct {
	engine      *Engine
	service     *Service
	requireAuth func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
func NewHandler(engine *Engine, service *Service, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{engine: engine, service: service, requireAuth: requireAuth}
}

// SubscriptionRoutes returns the router mounted at /subscriptions.
//
// # Endpoints
//   - POST /c/{channelId} : Toggles the caller's subscription.
//   - GET  /c/{channelId} : Lists the channel's subscribers.
//   - GET  /u/{subscriberId} : Lists the channels a user subscribes to.
func (handler *Handler) SubscriptionRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.requireAuth)

	router.Post("/c/{channelId}", handler.toggleSubscription)
	router.Get("/c/{channelId}", handler.listSubscribers)
	router.Get("/u/{subscriberId}", handler.listSubscriptions)

	return router
}

// LikeRoutes returns the router mounted at /likes.
//
// # Endpoints
//   - POST /toggle/v/{videoId}   : Toggles a video like.
//   - POST /toggle/c/{commentId} : Toggles a comment like.
//   - POST /toggle/p/{postId}    : Toggles a post like.
//   - GET  /videos               : Lists the caller's liked videos.
func (handler *Handler) LikeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.requireAuth)

	router.Post("/toggle/v/{videoId}", handler.toggleLike(KindVideoLike, "videoId"))
	router.Post("/toggle/c/{commentId}", handler.toggleLike(KindCommentLike, "commentId"))
	router.Post("/toggle/p/{postId}", handler.toggleLike(KindPostLike, "postId"))
	router.Get("/videos", handler.likedVideos)

	return router
}

// # Responses

type subscriptionToggleResponse struct {
	IsActive        bool  `json:"is_active"`
	Count           int64 `json:"count"`
	IsSubscribed    bool  `json:"is_subscribed"`
	SubscriberCount int64 `json:"subscriber_count"`
}

type likeToggleResponse struct {
	IsActive   bool  `json:"is_active"`
	Count      int64 `json:"count"`
	IsLiked    bool  `json:"is_liked"`
	TotalLikes int64 `json:"total_likes"`
}

/*
ToggleSubscription subscribes to or unsubscribes from a channel.

POST /api/v1/subscriptions/c/{channelId}

Response:
  - 200: subscriptionToggleResponse
  - 403: Forbidden: Subscribing to oneself
  - 404: NotFound: Unknown channel
*/
func (handler *Handler) toggleSubscription(writer http.ResponseWriter, request *http.Request) {
	channelID, err := requestutil.ID(request, "channelId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	requestContext := requestutil.Context(request)
	result, err := handler.engine.Toggle(request.Context(), requestContext.ActorID(), KindSubscription, channelID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := "Unsubscribed"
	if result.IsActive {
		message = "Subscribed"
	}

	respond.OKMessage(writer, subscriptionToggleResponse{
		IsActive:        result.IsActive,
		Count:           result.Count,
		IsSubscribed:    result.IsActive,
		SubscriberCount: result.Count,
	}, message)
}

// toggleLike builds the handler for one like kind keyed by the named URL parameter.
func (handler *Handler) toggleLike(kind Kind, param string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		targetID, err := requestutil.ID(request, param)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		requestContext := requestutil.Context(request)
		result, err := handler.engine.Toggle(request.Context(), requestContext.ActorID(), kind, targetID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		message := "Like removed"
		if result.IsActive {
			message = "Liked"
		}

		respond.OKMessage(writer, likeToggleResponse{
			IsActive:   result.IsActive,
			Count:      result.Count,
			IsLiked:    result.IsActive,
			TotalLikes: result.Count,
		}, message)
	}
}

/*
ListSubscribers returns the subscribers of a channel.

GET /api/v1/subscriptions/c/{channelId}?page=&limit=
*/
func (handler *Handler) listSubscribers(writer http.ResponseWriter, request *http.Request) {
	channelID, err := requestutil.ID(request, "channelId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	items, total, err := handler.service.Subscribers(request.Context(), channelID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params, total))
}

/*
ListSubscriptions returns the channels a user subscribes to.

GET /api/v1/subscriptions/u/{subscriberId}?page=&limit=
*/
func (handler *Handler) listSubscriptions(writer http.ResponseWriter, request *http.Request) {
	subscriberID, err := requestutil.ID(request, "subscriberId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	items, total, err := handler.service.Subscriptions(request.Context(), subscriberID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params, total))
}

/*
LikedVideos returns the caller's liked videos.

GET /api/v1/likes/videos?page=&limit=
*/
func (handler *Handler) likedVideos(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	items, total, err := handler.service.LikedVideos(request.Context(), requestutil.Context(request), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params, total))
}
