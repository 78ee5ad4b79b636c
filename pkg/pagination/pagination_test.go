// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package pagination_test

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pims-archive/pims/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: 20}},
		{"explicit", "?page=2&limit=10", pagination.Params{Page: 2, Limit: 10}},
		{"negative page", "?page=-3", pagination.Params{Page: 1, Limit: 20}},
		{"garbage", "?page=abc&limit=xyz", pagination.Params{Page: 1, Limit: 20}},
		{"capped limit", "?limit=500", pagination.Params{Page: 1, Limit: 100}},
		{"huge page", "?page=922337203685477581&limit=20", pagination.Params{Page: pagination.MaxPage, Limit: 20}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/api/v1/entries"+tc.query, nil)
			assert.Equal(t, tc.want, pagination.FromRequest(request))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, pagination.Params{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())
}

/*
TestOffset_NeverNegative verifies that large page numbers cannot overflow into
a negative OFFSET.
*/
func TestOffset_NeverNegative(t *testing.T) {
	request := httptest.NewRequest("GET", "/api/v1/entries?page=922337203685477581&limit=20", nil)
	offset := pagination.FromRequest(request).Offset()
	assert.Positive(t, offset)
	assert.LessOrEqual(t, offset, math.MaxInt32)

	offset = pagination.Params{Page: math.MaxInt, Limit: pagination.MaxLimit}.Offset()
	assert.Positive(t, offset)
	assert.LessOrEqual(t, offset, math.MaxInt32)
}

func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)

	assert.Equal(t, 0, pagination.NewMeta(1, 20, 0).TotalPages)
}
