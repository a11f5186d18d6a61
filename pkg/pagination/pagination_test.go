// Copyright (c) 2026 PMR Atlas. All rights reserved.

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carolinavmo/pmr-atlas/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"explicit", "?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"clamped_limit", "?limit=1000", pagination.Params{Page: 1, Limit: pagination.MaxLimit}},
		{"garbage", "?page=x&limit=-4", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/documents/1/versions"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

func TestNewMeta(t *testing.T) {
	params := pagination.Params{Page: 2, Limit: 10}

	meta := pagination.NewMeta(params, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasMore)
	assert.Equal(t, 10, params.Offset())

	last := pagination.NewMeta(pagination.Params{Page: 3, Limit: 10}, 25)
	assert.False(t, last.HasMore)
}
