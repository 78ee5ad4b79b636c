// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package setup

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pims-archive/pims/internal/platform/middleware"
	"github.com/pims-archive/pims/internal/platform/respond"
	"github.com/pims-archive/pims/internal/platform/sec"
)

// Handler exposes the setup action to administrators.
type Handler struct {
	service *Service
}

// NewHandler constructs a new setup [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the setup endpoints, mounted at /api/v1/admin/setup.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/", handler.status)
	router.Post("/", handler.initialize)

	return router
}

// GET /api/v1/admin/setup.
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	status, err := handler.service.Status(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, status)
}

/*
POST /api/v1/admin/setup.

Response:
  - 200: Result (seeded or already initialized)
  - 500: Migration or seed failure
*/
func (handler *Handler) initialize(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Initialize(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
