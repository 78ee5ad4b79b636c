// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package insight

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pims-archive/pims/internal/platform/respond"
)

// Handler exposes the dashboard views.
type Handler struct {
	service *Service
}

// NewHandler constructs a new insight [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the read endpoint, mounted at /api/pims.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.getView)
	return router
}

/*
GET /api/pims?type=stats.

Description: One of the pre-aggregated views in [Views]. The body is the bare
view, without the data envelope, which the dashboards read directly.

Response:
  - 200: The view
  - 400: Missing or unknown type
  - 503: Schema not initialized
*/
func (handler *Handler) getView(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.View(request.Context(), request.URL.Query().Get("type"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, view)
}
