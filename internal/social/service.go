// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// # Directory Contracts

// ChannelSummary is the public projection of a channel used in lists.
type ChannelSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ChannelDirectory resolves channel summaries by ID. Unknown IDs are omitted.
type ChannelDirectory interface {
	Channels(context context.Context, ids []string) (map[string]*ChannelSummary, error)
}

// VideoSummary is the public projection of a video used in lists.
type VideoSummary struct {
	ID           string  `json:"id"`
	OwnerID      string  `json:"owner_id"`
	Title        string  `json:"title"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`
	Views        int64   `json:"views"`
}

// VideoDirectory resolves published video summaries by ID. Unknown or
// unpublished IDs are omitted.
type VideoDirectory interface {
	Videos(context context.Context, ids []string) (map[string]*VideoSummary, error)
}

// # List Items

// Subscription pairs a channel with the time the relation was created.
type Subscription struct {
	Channel      *ChannelSummary `json:"channel"`
	SubscribedAt time.Time       `json:"subscribed_at"`
}

// LikedVideo pairs a video with the time it was liked.
type LikedVideo struct {
	Video   *VideoSummary `json:"video"`
	LikedAt time.Time     `json:"liked_at"`
}

// Service implements the read side of the relation layer.
type Service struct {
	edges    EdgeStore
	counts   Counter
	targets  Targets
	channels ChannelDirectory
	videos   VideoDirectory
}

// NewService constructs a [Service]. counts may be a [CountCache] or the
// [EdgeStore] itself.
func NewService(edges EdgeStore, counts Counter, targets Targets, channels ChannelDirectory, videos VideoDirectory) *Service {
	return &Service{edges: edges, counts: counts, targets: targets, channels: channels, videos: videos}
}

/*
Subscribers lists the channels subscribed to channelID.

Returns:
  - []*Subscription: Page of subscribers
  - int64: Total subscribers
  - error: NotFound if the channel does not exist
*/
func (service *Service) Subscribers(context context.Context, channelID string, params pagination.Params) ([]*Subscription, int64, error) {
	if err := service.targets.Ensure(context, KindSubscription, channelID); err != nil {
		return nil, 0, err
	}

	edges, total, err := service.edges.ListActors(context, KindSubscription, channelID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}

	items, err := service.subscriptions(context, edges, func(edge *Edge) string { return edge.ActorID })
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

/*
Subscriptions lists the channels subscriberID is subscribed to.

Returns:
  - []*Subscription: Page of channels
  - int64: Total subscriptions
  - error: NotFound if the subscriber does not exist
*/
func (service *Service) Subscriptions(context context.Context, subscriberID string, params pagination.Params) ([]*Subscription, int64, error) {
	// Subscribers are channels too: every account owns one.
	if err := service.targets.Ensure(context, KindSubscription, subscriberID); err != nil {
		return nil, 0, err
	}

	edges, total, err := service.edges.ListTargets(context, subscriberID, KindSubscription, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}

	items, err := service.subscriptions(context, edges, func(edge *Edge) string { return edge.TargetID })
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

/*
LikedVideos lists the published videos the caller has liked, newest like first.

Returns:
  - []*LikedVideo: Page of videos
  - int64: Total video likes of the caller
  - error: Unauthorized for anonymous callers
*/
func (service *Service) LikedVideos(context context.Context, requestContext identity.RequestContext, params pagination.Params) ([]*LikedVideo, int64, error) {
	if !requestContext.IsAuthenticated() {
		return nil, 0, apperr.Unauthorized("Authentication required")
	}

	edges, total, err := service.edges.ListTargets(context, requestContext.ActorID(), KindVideoLike, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.TargetID)
	}

	videos, err := service.videos.Videos(context, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("social_service_liked_videos_failed: %w", err)
	}

	items := make([]*LikedVideo, 0, len(edges))
	for _, edge := range edges {
		if video, ok := videos[edge.TargetID]; ok {
			items = append(items, &LikedVideo{Video: video, LikedAt: edge.CreatedAt})
		}
	}
	return items, total, nil
}

// # Personalisation

// Count returns the derived count of edges of kind pointing at targetID.
func (service *Service) Count(context context.Context, kind Kind, targetID string) (int64, error) {
	return service.counts.Count(context, kind, targetID)
}

// CountByActor returns the number of edges of kind originating from actorID.
func (service *Service) CountByActor(context context.Context, actorID string, kind Kind) (int64, error) {
	return service.edges.CountByActor(context, actorID, kind)
}

// CountTargets returns the live number of edges of kind pointing at any of targetIDs.
func (service *Service) CountTargets(context context.Context, kind Kind, targetIDs []string) (int64, error) {
	return service.edges.CountTargets(context, kind, targetIDs)
}

// IsActive reports whether the caller holds the edge. Anonymous callers never do.
func (service *Service) IsActive(context context.Context, requestContext identity.RequestContext, kind Kind, targetID string) (bool, error) {
	if !requestContext.IsAuthenticated() {
		return false, nil
	}
	return service.edges.Exists(context, requestContext.ActorID(), kind, targetID)
}

func (service *Service) subscriptions(context context.Context, edges []*Edge, pick func(*Edge) string) ([]*Subscription, error) {
	ids := make([]string, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, pick(edge))
	}

	channels, err := service.channels.Channels(context, ids)
	if err != nil {
		return nil, fmt.Errorf("social_service_channels_failed: %w", err)
	}

	items := make([]*Subscription, 0, len(edges))
	for _, edge := range edges {
		if channel, ok := channels[pick(edge)]; ok {
			items = append(items, &Subscription{Channel: channel, SubscribedAt: edge.CreatedAt})
		}
	}
	return items, nil
}
