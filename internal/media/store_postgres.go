// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/postgres"
	"github.com/taibuivan/vidora/internal/social"
)

// PostgresRepository implements [Repository] over the media schema.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
View counts a view and returns the video.

Description: Executes within a transaction:
 1. Locks the row if the viewer may see it.
 2. Increments the view counter and reads back the new value.

A hidden video is never counted.

Parameters:
  - context: context.Context
  - videoID: string
  - viewerID: string (empty for anonymous viewers)

Returns:
  - *Video: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresRepository) View(parent context.Context, videoID, viewerID string) (*Video, error) {
	const selectQuery = `
		SELECT id, ownerid, title, description, videourl, thumbnailurl, duration, views, ispublished, createdat, updatedat
		FROM media.video
		WHERE id = $1 AND (ispublished OR ownerid::text = $2)
		FOR UPDATE`

	const incrementQuery = `UPDATE media.video SET views = views + 1 WHERE id = $1 RETURNING views`

	video := &Video{}
	err := postgres.WithTx(parent, repository.pool, func(ctx context.Context, tx postgres.DBTX) error {
		err := tx.QueryRow(ctx, selectQuery, videoID, viewerID).Scan(
			&video.ID,
			&video.OwnerID,
			&video.Title,
			&video.Description,
			&video.VideoURL,
			&video.ThumbnailURL,
			&video.Duration,
			&video.Views,
			&video.IsPublished,
			&video.CreatedAt,
			&video.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctx, incrementQuery, video.ID).Scan(&video.Views)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Video")
		}
		return nil, fmt.Errorf("postgres_media_repo_view_failed: %w", err)
	}
	return video, nil
}

// VideoExists reports whether a published video exists.
func (repository *PostgresRepository) VideoExists(context context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM media.video WHERE id = $1 AND ispublished)`
	return repository.exists(context, "video", query, id)
}

// CommentExists reports whether a comment on a published video exists.
func (repository *PostgresRepository) CommentExists(context context.Context, id string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM media.comment c
			JOIN media.video v ON v.id = c.videoid
			WHERE c.id = $1 AND v.ispublished
		)`
	return repository.exists(context, "comment", query, id)
}

// PostExists reports whether a post exists.
func (repository *PostgresRepository) PostExists(context context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM media.post WHERE id = $1)`
	return repository.exists(context, "post", query, id)
}

func (repository *PostgresRepository) exists(context context.Context, entity, query, id string) (bool, error) {
	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_media_repo_%s_exists_failed: %w", entity, err)
	}
	return exists, nil
}

/*
Videos batch-loads published video summaries.

Returns:
  - map[string]*social.VideoSummary: Keyed by video ID
  - error: Database failures
*/
func (repository *PostgresRepository) Videos(context context.Context, ids []string) (map[string]*social.VideoSummary, error) {
	summaries := make(map[string]*social.VideoSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	const query = `
		SELECT id, ownerid, title, thumbnailurl, duration, views
		FROM media.video
		WHERE id = ANY($1::uuid[]) AND ispublished`

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres_media_repo_videos_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		summary := &social.VideoSummary{}
		if err := rows.Scan(&summary.ID, &summary.OwnerID, &summary.Title, &summary.ThumbnailURL, &summary.Duration, &summary.Views); err != nil {
			return nil, fmt.Errorf("postgres_media_repo_scan_failed: %w", err)
		}
		summaries[summary.ID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_media_repo_rows_failed: %w", err)
	}
	return summaries, nil
}

// ChannelTotals aggregates the owner's published videos in one scan.
func (repository *PostgresRepository) ChannelTotals(context context.Context, ownerID string) (*ChannelTotals, error) {
	const query = `SELECT id, views FROM media.video WHERE ownerid = $1 AND ispublished`

	rows, err := repository.pool.Query(context, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres_media_repo_channel_totals_failed: %w", err)
	}
	defer rows.Close()

	totals := &ChannelTotals{VideoIDs: []string{}}
	for rows.Next() {
		var (
			id    string
			views int64
		)
		if err := rows.Scan(&id, &views); err != nil {
			return nil, fmt.Errorf("postgres_media_repo_scan_failed: %w", err)
		}
		totals.Videos++
		totals.Views += views
		totals.VideoIDs = append(totals.VideoIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_media_repo_rows_failed: %w", err)
	}
	return totals, nil
}
