// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package middleware_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/platform/ctxutil"
	"github.com/pims-archive/pims/internal/platform/metrics"
	"github.com/pims-archive/pims/internal/platform/middleware"
	"github.com/pims-archive/pims/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (s stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

type stubConfig struct {
	dev     bool
	allowed string
}

func (c stubConfig) IsDevelopment() bool             { return c.dev }
func (c stubConfig) AllowsOrigin(origin string) bool { return origin == c.allowed }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-id", seen)
}

func TestRequireRole(t *testing.T) {
	verifier := stubVerifier{claims: &sec.AuthClaims{Username: "ed", Role: string(sec.RoleEditor)}}

	tests := []struct {
		name   string
		header string
		role   sec.UserRole
		want   int
	}{
		{"anonymous", "", sec.RoleEditor, http.StatusUnauthorized},
		{"malformed header", "Token good", sec.RoleEditor, http.StatusUnauthorized},
		{"bad token", "Bearer nope", sec.RoleEditor, http.StatusUnauthorized},
		{"editor allowed", "Bearer good", sec.RoleEditor, http.StatusOK},
		{"editor below admin", "Bearer good", sec.RoleAdmin, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := middleware.Authenticate(verifier)(middleware.RequireRole(tc.role)(okHandler))

			request := httptest.NewRequest(http.MethodPost, "/api/v1/admin/entries", nil)
			if tc.header != "" {
				request.Header.Set("Authorization", tc.header)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 2)
	handler := limiter.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", nil)
		request.RemoteAddr = "203.0.113.9:5555"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	assert.True(t, limiter.Allow("198.51.100.1"))
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestCORS(t *testing.T) {
	handler := middleware.CORS(stubConfig{allowed: "https://pims.example.org"})(okHandler)

	request := httptest.NewRequest(http.MethodOptions, "/api/pims", nil)
	request.Header.Set("Origin", "https://pims.example.org")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://pims.example.org", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodGet, "/api/pims", nil)
	request.Header.Set("Origin", "https://elsewhere.example.com")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m, err := metrics.NewMetrics()
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.Metrics(m))
	router.Get("/api/v1/entries/{id}", okHandler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/entries/42", nil))

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, recorder.Body.String(), `route="/api/v1/entries/{id}"`)
}

/*
TestClientIP verifies that forwarding headers are only believed when the
direct peer is a trusted proxy.
*/
func TestClientIP(t *testing.T) {
	trusted, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", ""})
	require.NoError(t, err)

	tests := []struct {
		name      string
		trusted   []netip.Prefix
		peer      string
		forwarded string
		realIP    string
		want      string
	}{
		{"no proxies configured", nil, "203.0.113.50:1234", "198.51.100.7", "198.51.100.8", "203.0.113.50"},
		{"untrusted peer", trusted, "203.0.113.50:1234", "198.51.100.7", "", "203.0.113.50"},
		{"trusted peer", trusted, "10.1.2.3:1234", "198.51.100.7", "", "198.51.100.7"},
		{"spoofed leftmost hop", trusted, "10.1.2.3:1234", "1.1.1.1, 198.51.100.7, 10.0.0.9", "", "198.51.100.7"},
		{"all hops trusted", trusted, "192.0.2.1:80", "10.0.0.4, 10.0.0.9", "", "10.0.0.4"},
		{"malformed hop", trusted, "10.1.2.3:1234", "not-an-ip", "", "10.1.2.3"},
		{"real ip from trusted peer", trusted, "192.0.2.1:80", "", "198.51.100.9", "198.51.100.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			handler := middleware.ClientIP(tc.trusted)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
				seen = middleware.RealIP(request)
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tc.peer
			if tc.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				request.Header.Set("X-Real-IP", tc.realIP)
			}

			handler.ServeHTTP(httptest.NewRecorder(), request)
			assert.Equal(t, tc.want, seen)
		})
	}
}

func TestParseTrustedProxies_Rejects(t *testing.T) {
	_, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.ErrorContains(t, err, "10.0.0.0/99")

	_, err = middleware.ParseTrustedProxies([]string{"proxy.internal"})
	assert.ErrorContains(t, err, "proxy.internal")
}

/*
TestRateLimiter_IgnoresUntrustedForwarding verifies that rotating
X-Forwarded-For from one peer shares that peer's bucket.
*/
func TestRateLimiter_IgnoresUntrustedForwarding(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.1, 5)
	handler := middleware.ClientIP(nil)(limiter.Middleware(okHandler))

	accepted := 0
	for i := range 50 {
		request := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", nil)
		request.RemoteAddr = "203.0.113.9:5555"
		request.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		if recorder.Code == http.StatusOK {
			accepted++
		}
	}

	assert.Equal(t, 5, accepted)
}

func TestStructuredLogger_NilLogger(t *testing.T) {
	var logged bool
	handler := middleware.StructuredLogger(nil)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		logged = ctxutil.GetLogger(request.Context()) != nil
		writer.WriteHeader(http.StatusTeapot)
	}))

	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.True(t, logged)
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}
