// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dashboard serves the signed-in creator's channel statistics.

Every figure is derived at read time: video and view totals from the media
store, like and subscriber totals from the social edge graph.
*/
package dashboard

import (
	"context"

	"github.com/taibuivan/vidora/internal/media"
	"github.com/taibuivan/vidora/internal/social"
)

// Stats is the aggregate view of a channel's published catalogue.
type Stats struct {
	TotalVideos      int64 `json:"total_videos"`
	TotalViews       int64 `json:"total_views"`
	TotalLikes       int64 `json:"total_likes"`
	TotalSubscribers int64 `json:"total_subscribers"`
}

// VideoTotals aggregates an owner's published videos. Implemented by the media repository.
type VideoTotals interface {
	ChannelTotals(context context.Context, ownerID string) (*media.ChannelTotals, error)
}

// Relations derives edge counts. Implemented by [social.Service].
type Relations interface {
	Count(context context.Context, kind social.Kind, targetID string) (int64, error)
	CountTargets(context context.Context, kind social.Kind, targetIDs []string) (int64, error)
}
