// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/social"
)

// PostgresRepository implements [Repository] over users.account.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// channelColumns is the allow-listed projection; credentials are never selected.
const channelColumns = `id, username, displayname, COALESCE(avatarurl, ''), COALESCE(coverimageurl, ''), createdat`

/*
FindByID retrieves a channel from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Channel: Public projection
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Channel, error) {
	const query = `SELECT ` + channelColumns + ` FROM users.account WHERE id = $1 AND deletedat IS NULL`
	return repository.findOne(context, "find_by_id", query, id)
}

// FindByUsername retrieves a channel by its canonical username.
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*Channel, error) {
	const query = `SELECT ` + channelColumns + ` FROM users.account WHERE username = $1 AND deletedat IS NULL`
	return repository.findOne(context, "find_by_username", query, username)
}

func (repository *PostgresRepository) findOne(context context.Context, operation, query, argument string) (*Channel, error) {
	channel := &Channel{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&channel.ID,
		&channel.Username,
		&channel.DisplayName,
		&channel.AvatarURL,
		&channel.CoverImageURL,
		&channel.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, fmt.Errorf("postgres_channel_repo_%s_failed: %w", operation, err)
	}
	return channel, nil
}

/*
Channels batch-loads channel summaries.

Returns:
  - map[string]*social.ChannelSummary: Keyed by channel ID
  - error: Database failures
*/
func (repository *PostgresRepository) Channels(context context.Context, ids []string) (map[string]*social.ChannelSummary, error) {
	summaries := make(map[string]*social.ChannelSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	const query = `
		SELECT id, username, displayname, COALESCE(avatarurl, '')
		FROM users.account
		WHERE id = ANY($1::uuid[]) AND deletedat IS NULL`

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres_channel_repo_channels_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		summary := &social.ChannelSummary{}
		if err := rows.Scan(&summary.ID, &summary.Username, &summary.DisplayName, &summary.AvatarURL); err != nil {
			return nil, fmt.Errorf("postgres_channel_repo_scan_failed: %w", err)
		}
		summaries[summary.ID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_channel_repo_rows_failed: %w", err)
	}
	return summaries, nil
}

// Exists reports whether a live account with the ID exists.
func (repository *PostgresRepository) Exists(context context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE id = $1 AND deletedat IS NULL)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_channel_repo_exists_failed: %w", err)
	}
	return exists, nil
}

/*
Update modifies the mutable profile metadata of a channel.

Description: COALESCE keeps the stored value for every nil field, so the update
is a single statement regardless of which fields are present.

Returns:
  - *Channel: Updated projection
  - error: apperr.NotFound or update failures
*/
func (repository *PostgresRepository) Update(context context.Context, id string, input UpdateInput) (*Channel, error) {
	const query = `
		UPDATE users.account
		SET displayname   = COALESCE($2, displayname),
		    avatarurl     = COALESCE($3, avatarurl),
		    coverimageurl = COALESCE($4, coverimageurl),
		    updatedat     = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING ` + channelColumns

	channel := &Channel{}
	err := repository.pool.QueryRow(context, query, id, input.DisplayName, input.AvatarURL, input.CoverImageURL).Scan(
		&channel.ID,
		&channel.Username,
		&channel.DisplayName,
		&channel.AvatarURL,
		&channel.CoverImageURL,
		&channel.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, fmt.Errorf("postgres_channel_repo_update_failed: %w", err)
	}
	return channel, nil
}

// SoftDelete flags an account as logically destroyed.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = `UPDATE users.account SET deletedat = NOW(), updatedat = NOW() WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_channel_repo_soft_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Channel")
	}
	return nil
}
