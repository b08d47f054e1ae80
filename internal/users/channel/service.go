// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/platform/validate"
	"github.com/taibuivan/vidora/internal/social"
	"github.com/taibuivan/vidora/pkg/handle"
)

const maxDisplayNameLength = 64

// Service orchestrates channel profiles and account self-management.
type Service struct {
	channels  Repository
	relations Relations
	sessions  SessionRevoker
	logger    *slog.Logger
}

// NewService constructs a new channel [Service].
func NewService(channels Repository, relations Relations, sessions SessionRevoker, logger *slog.Logger) *Service {
	return &Service{channels: channels, relations: relations, sessions: sessions, logger: logger}
}

/*
Profile returns the public profile of the channel owned by username.

Description: The caller may be anonymous, in which case IsSubscribed is false.

Parameters:
  - context: context.Context
  - requestContext: identity.RequestContext
  - username: string

Returns:
  - *Profile: Channel with derived counts
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Profile(context context.Context, requestContext identity.RequestContext, username string) (*Profile, error) {
	username = handle.Canonical(username)
	if username == "" {
		return nil, apperr.NotFound("Channel")
	}

	channel, err := service.channels.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}
	return service.profile(context, requestContext, channel)
}

// ProfileByID is [Service.Profile] addressed by channel ID.
func (service *Service) ProfileByID(context context.Context, requestContext identity.RequestContext, id string) (*Profile, error) {
	channel, err := service.channels.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	return service.profile(context, requestContext, channel)
}

func (service *Service) profile(context context.Context, requestContext identity.RequestContext, channel *Channel) (*Profile, error) {
	subscribers, err := service.relations.Count(context, social.KindSubscription, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("channel_service_subscriber_count_failed: %w", err)
	}

	subscribedTo, err := service.relations.CountByActor(context, channel.ID, social.KindSubscription)
	if err != nil {
		return nil, fmt.Errorf("channel_service_subscribed_to_count_failed: %w", err)
	}

	subscribed, err := service.relations.IsActive(context, requestContext, social.KindSubscription, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("channel_service_is_subscribed_failed: %w", err)
	}

	return &Profile{
		ID:                channel.ID,
		Username:          channel.Username,
		DisplayName:       channel.DisplayName,
		AvatarURL:         channel.AvatarURL,
		CoverImageURL:     channel.CoverImageURL,
		CreatedAt:         channel.CreatedAt,
		SubscriberCount:   subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      subscribed,
	}, nil
}

/*
UpdateProfile applies a partial update to the caller's own channel.

Returns:
  - *Channel: The updated channel
  - error: Unauthorized, ValidationError or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, requestContext identity.RequestContext, input UpdateInput) (*Channel, error) {
	if !requestContext.IsAuthenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		input.DisplayName = &trimmed
		validator.Required("display_name", trimmed).MaxLen("display_name", trimmed, maxDisplayNameLength)
	}
	if input.AvatarURL != nil && *input.AvatarURL != "" {
		validator.URL("avatar_url", *input.AvatarURL)
	}
	if input.CoverImageURL != nil && *input.CoverImageURL != "" {
		validator.URL("cover_image_url", *input.CoverImageURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	channel, err := service.channels.Update(context, requestContext.ActorID(), input)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "channel_profile_updated", slog.String("user_id", channel.ID))
	return channel, nil
}

/*
DeleteAccount soft-deletes the caller's account and ends its session.

Description: Access tokens already issued stop resolving immediately because
the resolver re-reads the account on every request.
*/
func (service *Service) DeleteAccount(context context.Context, requestContext identity.RequestContext) error {
	if !requestContext.IsAuthenticated() {
		return apperr.Unauthorized("Authentication required")
	}

	if err := service.channels.SoftDelete(context, requestContext.ActorID()); err != nil {
		return err
	}

	if err := service.sessions.Revoke(context, requestContext.ActorID()); err != nil {
		return fmt.Errorf("channel_service_delete_revoke_failed: %w", err)
	}

	service.logger.WarnContext(context, "channel_account_deleted", slog.String("user_id", requestContext.ActorID()))
	return nil
}
