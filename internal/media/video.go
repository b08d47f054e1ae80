// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package media owns videos, comments and posts.

Only the read side needed by the rest of the system lives here: fetching a
video (which counts a view), existence checks used as relation targets, and
summaries for liked-video lists. Uploading and editing media is handled
elsewhere.
*/
package media

import (
	"context"
	"time"

	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/social"
	"github.com/taibuivan/vidora/internal/users/channel"
)

// # Domain Entities

// Video is a published or draft video.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Owner is the allow-listed projection of a video's channel.
type Owner struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	SubscriberCount int64  `json:"subscriber_count"`
	IsSubscribed    bool   `json:"is_subscribed"`
}

// ChannelTotals aggregates an owner's published videos.
type ChannelTotals struct {
	Videos   int64
	Views    int64
	VideoIDs []string
}

// VideoDetail is a video as returned to a viewer.
type VideoDetail struct {
	*Video
	Owner      *Owner `json:"owner"`
	LikesCount int64  `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
}

// # Repository Contracts

// Repository defines the persistence contract for media.
type Repository interface {

	/*
		View loads a video visible to viewerID and counts one view.

		Description: Visible means published, or owned by the viewer.

		Returns:
		  - *Video: The video with the incremented view count
		  - error: apperr.NotFound or storage failures
	*/
	View(context context.Context, videoID, viewerID string) (*Video, error)

	/*
		VideoExists reports whether a published video exists.
	*/
	VideoExists(context context.Context, id string) (bool, error)

	/*
		CommentExists reports whether a comment on a published video exists.
	*/
	CommentExists(context context.Context, id string) (bool, error)

	/*
		PostExists reports whether a post exists.
	*/
	PostExists(context context.Context, id string) (bool, error)

	/*
		Videos resolves summaries of published videos. Unknown IDs are omitted.
	*/
	Videos(context context.Context, ids []string) (map[string]*social.VideoSummary, error)

	/*
		ChannelTotals counts the owner's published videos and sums their views.
		Drafts are excluded.
	*/
	ChannelTotals(context context.Context, ownerID string) (*ChannelTotals, error)
}

// Relations is the part of the social layer a video read needs.
type Relations interface {
	Count(context context.Context, kind social.Kind, targetID string) (int64, error)
	IsActive(context context.Context, requestContext identity.RequestContext, kind social.Kind, targetID string) (bool, error)
}

// Channels resolves channel profiles for video owners.
type Channels interface {
	ProfileByID(context context.Context, requestContext identity.RequestContext, id string) (*channel.Profile, error)
}
