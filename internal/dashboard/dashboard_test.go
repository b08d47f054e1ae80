// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/media"
	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	"github.com/taibuivan/vidora/internal/social"
)

const (
	creatorID = "0190a6e2-7c1f-7000-8000-000000000001"
	newcomer  = "0190a6e2-7c1f-7000-8000-000000000002"
	videoOne  = "0190a6e2-7c1f-7000-8000-0000000000a1"
	videoTwo  = "0190a6e2-7c1f-7000-8000-0000000000a2"
)

// # Fakes

type catalogue map[string]*media.ChannelTotals

func (c catalogue) ChannelTotals(_ context.Context, ownerID string) (*media.ChannelTotals, error) {
	if totals, ok := c[ownerID]; ok {
		return totals, nil
	}
	return &media.ChannelTotals{VideoIDs: []string{}}, nil
}

type graph struct {
	likes       map[string]int64
	subscribers map[string]int64
	err         error
}

func (g *graph) Count(_ context.Context, kind social.Kind, targetID string) (int64, error) {
	if kind != social.KindSubscription {
		return 0, errors.New("unexpected kind")
	}
	return g.subscribers[targetID], g.err
}

func (g *graph) CountTargets(_ context.Context, kind social.Kind, targetIDs []string) (int64, error) {
	if kind != social.KindVideoLike {
		return 0, errors.New("unexpected kind")
	}
	var total int64
	for _, id := range targetIDs {
		total += g.likes[id]
	}
	return total, g.err
}

func newTestService() (*Service, *graph) {
	relations := &graph{
		likes:       map[string]int64{videoOne: 4, videoTwo: 1},
		subscribers: map[string]int64{creatorID: 7, newcomer: 2},
	}
	videos := catalogue{creatorID: {Videos: 2, Views: 130, VideoIDs: []string{videoOne, videoTwo}}}
	return NewService(videos, relations), relations
}

func signedIn(id string) identity.RequestContext {
	return identity.RequestContext{RequestID: "req", Principal: &identity.Principal{ID: id}}
}

// # Service

func TestChannelStats(t *testing.T) {
	service, _ := newTestService()

	tests := []struct {
		name   string
		caller string
		want   Stats
	}{
		{"with_videos", creatorID, Stats{TotalVideos: 2, TotalViews: 130, TotalLikes: 5, TotalSubscribers: 7}},
		{"no_videos_keeps_subscribers", newcomer, Stats{TotalSubscribers: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := service.ChannelStats(context.Background(), signedIn(tt.caller))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *stats)
		})
	}
}

func TestChannelStats_Failures(t *testing.T) {
	service, relations := newTestService()

	_, err := service.ChannelStats(context.Background(), identity.Anonymous("req"))
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	relations.err = errors.New("connection reset")
	_, err = service.ChannelStats(context.Background(), signedIn(creatorID))
	assert.ErrorContains(t, err, "dashboard_service_like_total_failed")
}

// # HTTP

type bearerIsID struct{}

func (bearerIsID) Resolve(_ context.Context, token string) (*identity.Principal, error) {
	return &identity.Principal{ID: token}, nil
}

func TestHTTP_GetStats(t *testing.T) {
	service, _ := newTestService()
	router := chi.NewRouter()
	router.Mount("/dashboard", NewHandler(service, middleware.RequireAuth(bearerIsID{})).Routes())

	fetch := func(token string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
		if token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusUnauthorized, fetch("").Code)

	recorder := fetch(creatorID)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data map[string]int64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, map[string]int64{
		"total_videos":      2,
		"total_views":       130,
		"total_likes":       5,
		"total_subscribers": 7,
	}, body.Data)
}
