// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/respond"
	"github.com/pims-archive/pims/pkg/pagination"
)

func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pims", nil)

	respond.Error(recorder, request, apperr.ValidationError("Invalid request type"))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request type", body.Error)
	assert.Equal(t, apperr.CodeValidation, body.Code)
}

func TestError_PlainErrorHidesCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "password")
}

func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.Paginated(recorder, []int{1, 2}, pagination.NewMeta(2, 10, 25))

	var body struct {
		Data []int           `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, []int{1, 2}, body.Data)
	assert.Equal(t, 25, body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPages)
}
