// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pims-archive/pims/internal/platform/respond"
)

// Handler implements the HTTP layer for reference data.
// Every route is public and read-only.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reference [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the reference domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/languages", handler.listLanguages)
	router.Get("/topics", handler.listTopics)
	router.Get("/organizations", handler.listOrganizations)
	router.Get("/locations", handler.listLocations)

	return router
}

/*
GET /api/v1/languages.

Response:
  - 200: []Language
*/
func (handler *Handler) listLanguages(writer http.ResponseWriter, request *http.Request) {
	langs, err := handler.service.ListLanguages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, langs)
}

/*
GET /api/v1/topics.

Description: Lists topics. With ?lang=fr (or a language id) names are localized.

Request:
  - lang: string (optional)

Response:
  - 200: []Topic
  - 400: Unknown language
*/
func (handler *Handler) listTopics(writer http.ResponseWriter, request *http.Request) {

	// Resolve optional localization
	lang, err := handler.service.ResolveLanguage(request.Context(), request.URL.Query().Get(FieldLang))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	topics, err := handler.service.ListTopics(request.Context(), lang)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, topics)
}

// GET /api/v1/organizations.
func (handler *Handler) listOrganizations(writer http.ResponseWriter, request *http.Request) {
	organizations, err := handler.service.ListOrganizations(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, organizations)
}

// GET /api/v1/locations.
func (handler *Handler) listLocations(writer http.ResponseWriter, request *http.Request) {
	locations, err := handler.service.ListLocations(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, locations)
}
