// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pims-archive/pims/internal/auth"
	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/sec"
)

const secret = "0123456789abcdef0123456789abcdef"

func hash(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func newService(t *testing.T) (*auth.Service, *sec.TokenService) {
	t.Helper()

	accounts, err := auth.ParseAccounts([]string{
		"root:admin:" + hash(t, "correct horse"),
		"archivist:editor:" + hash(t, "battery staple"),
	})
	require.NoError(t, err)

	tokens, err := sec.NewTokenService(secret, "pims")
	require.NoError(t, err)

	service, err := auth.NewService(auth.NewStaticAccountStore(accounts), tokens, 12*time.Hour, nil)
	require.NoError(t, err)
	return service, tokens
}

func TestParseAccounts(t *testing.T) {
	valid := hash(t, "pw")

	tests := []struct {
		name    string
		entries []string
		want    int
		wantErr string
	}{
		{"empty", nil, 0, ""},
		{"blank entries ignored", []string{" ", "root:admin:" + valid}, 1, ""},
		{"role case", []string{"root:ADMIN:" + valid}, 1, ""},
		{"missing hash", []string{"root:admin"}, 0, "expected name:role:bcrypt-hash"},
		{"plain password", []string{"root:admin:hunter2"}, 0, "bcrypt hash"},
		{"unknown role", []string{"root:viewer:" + valid}, 0, "unknown role"},
		{"duplicate", []string{"root:admin:" + valid, "ROOT:editor:" + valid}, 0, "listed twice"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			accounts, err := auth.ParseAccounts(tc.entries)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, accounts, tc.want)
		})
	}
}

/*
TestIssueToken verifies that a login yields a token carrying the account's role
and that unknown names and wrong passwords fail identically.
*/
func TestIssueToken(t *testing.T) {
	service, tokens := newService(t)
	ctx := context.Background()

	// 1. Valid login, name compared case-insensitively
	token, err := service.IssueToken(ctx, "Archivist", "battery staple")
	require.NoError(t, err)
	assert.Equal(t, auth.TokenTypeBearer, token.TokenType)
	assert.Equal(t, 43200, token.ExpiresIn)

	claims, err := tokens.VerifyToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "archivist", claims.Username)
	assert.Equal(t, string(sec.RoleEditor), claims.Role)

	// 2. Failures
	_, wrongPassword := service.IssueToken(ctx, "root", "wrong")
	_, unknownName := service.IssueToken(ctx, "nobody", "correct horse")

	assert.True(t, apperr.HasCode(wrongPassword, apperr.CodeUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownName.Error())
}

func TestTokenHTTP(t *testing.T) {
	service, _ := newService(t)
	routes := auth.NewHandler(service).Routes()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{"json", "application/json", `{"username":"root","password":"correct horse"}`, http.StatusOK},
		{"form", "application/x-www-form-urlencoded", url.Values{"username": {"root"}, "password": {"correct horse"}}.Encode(), http.StatusOK},
		{"wrong password", "application/json", `{"username":"root","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", "application/json", `{"username":"root"}`, http.StatusBadRequest},
		{"malformed json", "application/json", `{"username":`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(tc.body))
			request.Header.Set("Content-Type", tc.contentType)

			recorder := httptest.NewRecorder()
			routes.ServeHTTP(recorder, request)

			require.Equal(t, tc.want, recorder.Code, recorder.Body.String())
			if tc.want != http.StatusOK {
				return
			}

			var envelope struct {
				Data auth.Token `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope.Data.AccessToken)
			assert.Equal(t, "Bearer", envelope.Data.TokenType)
		})
	}
}
