// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pims-archive/pims/internal/auth"
	"github.com/pims-archive/pims/internal/core/entry"
	"github.com/pims-archive/pims/internal/core/insight"
	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/importer"
	"github.com/pims-archive/pims/internal/platform/config"
	"github.com/pims-archive/pims/internal/platform/constants"
	"github.com/pims-archive/pims/internal/platform/metrics"
	"github.com/pims-archive/pims/internal/platform/middleware"
	"github.com/pims-archive/pims/internal/setup"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It answers 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It answers 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth issues staff tokens.
	Auth *auth.Handler

	// Reference lists languages, topics, organizations and locations.
	Reference *reference.Handler

	// Entry serves search, detail, management and contributions.
	Entry *entry.Handler

	// Insight serves the dashboard views at /api/pims.
	Insight *insight.Handler

	// Setup initializes the schema and seed data.
	Setup *setup.Handler

	// Importer loads CSV exports.
	Importer *importer.Handler
}

// Dependencies are the cross-cutting collaborators of the middleware chain.
type Dependencies struct {
	Logger   *slog.Logger
	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics

	// TrustedProxies are the peers allowed to report the client address
	// through forwarding headers.
	TrustedProxies []netip.Prefix

	// Limiter applies to every request; ContributionLimiter additionally to
	// public submissions.
	Limiter             *middleware.RateLimiter
	ContributionLimiter *middleware.RateLimiter
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, deps Dependencies, h Handlers) *Server {
	r := chi.NewRouter()

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.ClientIP(deps.TrustedProxies))
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware)
	}
	r.Use(middleware.PanicRecovery(deps.Logger))
	r.Use(middleware.Authenticate(deps.Verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health checks for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// # Dashboard
	// Bare JSON views consumed by the charts.
	r.Mount("/api/pims", h.Insight.Routes())

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/entries", h.Entry.Routes())
		api.Mount("/admin/entries", h.Entry.AdminRoutes())
		api.Mount("/admin/setup", h.Setup.Routes())
		api.Mount("/admin/import", h.Importer.Routes())

		var contributions http.Handler = h.Entry.ContributionRoutes()
		if deps.ContributionLimiter != nil {
			contributions = deps.ContributionLimiter.Middleware(contributions)
		}
		api.Mount("/contributions", contributions)

		api.Mount("/", h.Reference.Routes())
	})

	return &Server{
		router: r,
		log:    deps.Logger,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
