// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"fmt"

	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/social"
)

// Service implements the media read use cases.
type Service struct {
	videos    Repository
	relations Relations
	channels  Channels
}

// NewService constructs a new media [Service].
func NewService(videos Repository, relations Relations, channels Channels) *Service {
	return &Service{videos: videos, relations: relations, channels: channels}
}

/*
GetVideo returns a video for the caller and counts one view.

Description: Every successful fetch increments the view counter, without
per-viewer deduplication. Like and subscription state is personalised when the
caller is signed in and false otherwise.

Parameters:
  - context: context.Context
  - requestContext: identity.RequestContext (may be anonymous)
  - videoID: string

Returns:
  - *VideoDetail: Video, owner projection and like state
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetVideo(context context.Context, requestContext identity.RequestContext, videoID string) (*VideoDetail, error) {
	video, err := service.videos.View(context, videoID, requestContext.ActorID())
	if err != nil {
		return nil, err
	}

	likes, err := service.relations.Count(context, social.KindVideoLike, video.ID)
	if err != nil {
		return nil, fmt.Errorf("media_service_like_count_failed: %w", err)
	}

	liked, err := service.relations.IsActive(context, requestContext, social.KindVideoLike, video.ID)
	if err != nil {
		return nil, fmt.Errorf("media_service_is_liked_failed: %w", err)
	}

	profile, err := service.channels.ProfileByID(context, requestContext, video.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("media_service_owner_failed: %w", err)
	}

	return &VideoDetail{
		Video: video,
		Owner: &Owner{
			ID:              profile.ID,
			Username:        profile.Username,
			DisplayName:     profile.DisplayName,
			AvatarURL:       profile.AvatarURL,
			SubscriberCount: profile.SubscriberCount,
			IsSubscribed:    profile.IsSubscribed,
		},
		LikesCount: likes,
		IsLiked:    liked,
	}, nil
}

// Targets returns the existence checkers for the like kinds this package owns.
func Targets(videos Repository) social.Targets {
	return social.Targets{
		social.KindVideoLike:   social.CheckerFunc(videos.VideoExists),
		social.KindCommentLike: social.CheckerFunc(videos.CommentExists),
		social.KindPostLike:    social.CheckerFunc(videos.PostExists),
	}
}
