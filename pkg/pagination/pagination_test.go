// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vidora/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: 20}},
		{"?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"?page=-1&limit=0", pagination.Params{Page: 1, Limit: 20}},
		{"?limit=5000", pagination.Params{Page: 1, Limit: 100}},
		{"?page=abc", pagination.Params{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		request := httptest.NewRequest("GET", "/subscriptions/u/x"+tt.query, nil)
		assert.Equal(t, tt.want, pagination.FromRequest(request), tt.query)
	}
}

func TestNewMetaAndOffset(t *testing.T) {
	params := pagination.Params{Page: 3, Limit: 10}

	assert.Equal(t, 20, params.Offset())
	assert.Equal(t, pagination.Meta{Page: 3, Limit: 10, Total: 21, TotalPages: 3, HasPrevPage: true}, pagination.NewMeta(params, 21))
	assert.Equal(t, 0, pagination.NewMeta(params, 0).TotalPages)

	first := pagination.NewMeta(pagination.Params{Page: 1, Limit: 10}, 21)
	assert.True(t, first.HasNextPage)
	assert.False(t, first.HasPrevPage)
}
