// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package media

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/testinfra"
)

func TestPostgresRepository_View_Integration(t *testing.T) {
	pool := testinfra.StartPostgres(t)
	videos := NewRepository(pool)
	ctx := context.Background()

	owner := testinfra.SeedAccount(t, pool, "creator")
	public := testinfra.SeedVideo(t, pool, owner, true)
	draft := testinfra.SeedVideo(t, pool, owner, false)

	t.Run("every fetch counts", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := videos.View(ctx, public, "")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		video, err := videos.View(ctx, public, "")
		require.NoError(t, err)
		assert.Equal(t, int64(21), video.Views)
	})

	t.Run("drafts are visible to the owner only", func(t *testing.T) {
		_, err := videos.View(ctx, draft, "")
		assert.True(t, apperr.IsNotFound(err))

		video, err := videos.View(ctx, draft, owner)
		require.NoError(t, err)
		assert.False(t, video.IsPublished)

		exists, err := videos.VideoExists(ctx, draft)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("summaries skip unknown and draft ids", func(t *testing.T) {
		summaries, err := videos.Videos(ctx, []string{public, draft, uuid.NewString()})
		require.NoError(t, err)
		assert.Len(t, summaries, 1)
		assert.Contains(t, summaries, public)
	})

	t.Run("channel totals exclude drafts", func(t *testing.T) {
		totals, err := videos.ChannelTotals(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals.Videos)
		assert.Equal(t, int64(21), totals.Views)
		assert.Equal(t, []string{public}, totals.VideoIDs)

		empty, err := videos.ChannelTotals(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Zero(t, empty.Videos)
		assert.Empty(t, empty.VideoIDs)
	})
}
