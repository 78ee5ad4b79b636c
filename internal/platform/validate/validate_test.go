// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Toronto Pride Parade 1981", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_HTTPURL checks the source link rule.
*/
func TestValidator_HTTPURL(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		value   *string
		isValid bool
	}{
		{"absent", nil, true},
		{"empty", str(""), true},
		{"https", str("https://example.com/toronto-pride-1981"), true},
		{"http", str("http://archive.example.org/a?b=c"), true},
		{"ftp", str("ftp://example.com/file"), false},
		{"relative", str("/toronto"), false},
		{"garbage", str("not a url"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.HTTPURL("source_link", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain verifies that every failing rule is collected.
*/
func TestValidator_Chain(t *testing.T) {
	zero := 0

	v := &validate.Validator{}
	v.Required("title", "").
		MaxLen("summary", strings.Repeat("x", 11), 10).
		Positive("organization_id", &zero).
		OneOf("sort", "random", "date_desc", "date_asc").
		Custom("date", true, "Invalid date")

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 5)
}

func TestValidator_PositiveNil(t *testing.T) {
	v := &validate.Validator{}
	v.Positive("location_id", nil)
	assert.NoError(t, v.Err())
}
