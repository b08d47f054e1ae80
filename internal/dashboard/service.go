// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"fmt"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/social"
)

// Service computes channel statistics.
type Service struct {
	videos    VideoTotals
	relations Relations
}

// NewService constructs a new dashboard [Service].
func NewService(videos VideoTotals, relations Relations) *Service {
	return &Service{videos: videos, relations: relations}
}

/*
ChannelStats returns the caller's channel statistics.

Description: Drafts are excluded from the video, view and like totals. The
subscriber total covers the channel itself, so a creator with no published
videos still sees their audience.

Parameters:
  - context: context.Context
  - requestContext: identity.RequestContext (must be authenticated)

Returns:
  - *Stats: Aggregated totals, zero-valued for an empty channel
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) ChannelStats(context context.Context, requestContext identity.RequestContext) (*Stats, error) {
	if !requestContext.IsAuthenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	channelID := requestContext.ActorID()

	totals, err := service.videos.ChannelTotals(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("dashboard_service_video_totals_failed: %w", err)
	}

	likes, err := service.relations.CountTargets(context, social.KindVideoLike, totals.VideoIDs)
	if err != nil {
		return nil, fmt.Errorf("dashboard_service_like_total_failed: %w", err)
	}

	subscribers, err := service.relations.Count(context, social.KindSubscription, channelID)
	if err != nil {
		return nil, fmt.Errorf("dashboard_service_subscriber_total_failed: %w", err)
	}

	return &Stats{
		TotalVideos:      totals.Videos,
		TotalViews:       totals.Views,
		TotalLikes:       likes,
		TotalSubscribers: subscribers,
	}, nil
}
