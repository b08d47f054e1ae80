// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package channel exposes the public face of an account: its channel profile.

Every account owns exactly one channel, addressed by username. Subscriptions
point at the channel's ID, which is the account ID.

# Architecture

  - Entities: Channel (public projection), Profile (channel plus derived counts).
  - Domain: Counts and the caller's subscription state come from the social
    package; this package never reads social.edge itself.
*/
package channel

import (
	"context"
	"time"

	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/social"
)

// # Domain Entities

// Channel is the allow-listed public projection of an account.
type Channel struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profile is a channel with its derived subscription numbers.
type Profile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	CoverImageURL     string    `json:"cover_image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	SubscriberCount   int64     `json:"subscriber_count"`
	SubscribedToCount int64     `json:"subscribed_to_count"`
	IsSubscribed      bool      `json:"is_subscribed"`
}

// UpdateInput carries a partial profile update. Nil fields are left unchanged.
type UpdateInput struct {
	DisplayName   *string
	AvatarURL     *string
	CoverImageURL *string
}

// # Repository Contracts

// Repository defines the persistence contract for channels.
type Repository interface {

	/*
		FindByID retrieves a live channel by account ID.

		Returns:
		  - *Channel: Public projection
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Channel, error)

	/*
		FindByUsername retrieves a live channel by its canonical username.

		Returns:
		  - *Channel: Public projection
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*Channel, error)

	/*
		Channels resolves summaries for a batch of IDs. Unknown IDs are omitted.
	*/
	Channels(context context.Context, ids []string) (map[string]*social.ChannelSummary, error)

	/*
		Exists reports whether a live channel with the ID exists.
	*/
	Exists(context context.Context, id string) (bool, error)

	/*
		Update applies a partial profile update.

		Returns:
		  - *Channel: The channel after the update
		  - error: apperr.NotFound or storage failures
	*/
	Update(context context.Context, id string, input UpdateInput) (*Channel, error)

	/*
		SoftDelete flags the account as deleted.
	*/
	SoftDelete(context context.Context, id string) error
}

// Relations is the part of the social layer a channel profile needs.
type Relations interface {
	Count(context context.Context, kind social.Kind, targetID string) (int64, error)
	CountByActor(context context.Context, actorID string, kind social.Kind) (int64, error)
	IsActive(context context.Context, requestContext identity.RequestContext, kind social.Kind, targetID string) (bool, error)
}

// SessionRevoker ends the refresh session of a principal.
type SessionRevoker interface {
	Revoke(context context.Context, principalID string) error
}
