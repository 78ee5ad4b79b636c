// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pims-archive/pims/pkg/query"
)

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"Pride", "Parade"}, query.StringSlice(" Pride, ,Parade "))
	assert.Nil(t, query.StringSlice(""))
}

func TestUniqueFold(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Alpha, Beta", []string{"Alpha", "Beta"}},
		{"Alpha, beta, ALPHA,, Beta ", []string{"Alpha", "beta"}},
		{" , ,", nil},
		{"", nil},
	}

	for _, tc := range tests {
		got := query.UniqueFold(tc.in)
		if tc.want == nil {
			assert.Empty(t, got, tc.in)
			continue
		}
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDedupeFold(t *testing.T) {
	in := []string{"Pride", "", "PRIDE", "Zines", "zines"}
	assert.Equal(t, []string{"Pride", "Zines"}, query.DedupeFold(in))
	assert.Equal(t, "PRIDE", in[2], "input is left untouched")
	assert.Nil(t, query.DedupeFold(nil))
}

func TestUniqueInts(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, query.UniqueInts([]int{3, 1, 3, 2, 1}))
	assert.Nil(t, query.UniqueInts(nil))
}
