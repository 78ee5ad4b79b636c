// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package entry provides the HTTP interface for browsing and managing the archive.

# Routing Strategy

  - Public (v1): Search, detail and related entries (GET /entries).
  - Public, rate limited: Contributions (POST /contributions).
  - Restricted (v1): Create, update and delete require the editor role.
*/
package entry

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/platform/middleware"
	requestutil "github.com/pims-archive/pims/internal/platform/request"
	"github.com/pims-archive/pims/internal/platform/respond"
	"github.com/pims-archive/pims/internal/platform/sec"
	"github.com/pims-archive/pims/internal/platform/validate"
	"github.com/pims-archive/pims/pkg/convert"
	"github.com/pims-archive/pims/pkg/normalize"
	"github.com/pims-archive/pims/pkg/pagination"
	"github.com/pims-archive/pims/pkg/query"
)

// LanguageResolver turns a "lang" parameter into a language. A blank value
// resolves to nil.
type LanguageResolver interface {
	ResolveLanguage(context context.Context, value string) (*reference.Language, error)
}

// # Handler Implementation

// Handler implements the HTTP layer for archive entries.
type Handler struct {
	service   *Service
	languages LanguageResolver
}

// NewHandler constructs a new entry [Handler].
func NewHandler(service *Service, languages LanguageResolver) *Handler {
	return &Handler{service: service, languages: languages}
}

// writeResult is the body of a successful create or contribution.
type writeResult struct {
	ID int `json:"id"`
}

// Routes returns the public read endpoints, mounted at /api/v1/entries.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listEntries)
	router.Get("/{id}", handler.getEntry)
	router.Get("/{id}/related", handler.relatedEntries)

	return router
}

// AdminRoutes returns the management endpoints, mounted at /api/v1/admin/entries.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleEditor))

	router.Post("/", handler.createEntry)
	router.Put("/{id}", handler.updateEntry)
	router.Delete("/{id}", handler.deleteEntry)

	return router
}

// ContributionRoutes returns the public submission endpoint, mounted at /api/v1/contributions.
func (handler *Handler) ContributionRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.submitContribution)
	return router
}

// # Read Endpoints

/*
GET /api/v1/entries.

Description: Paginated search over the archive.

Request:
  - q: string (title or summary, case-insensitive)
  - organization_id: int, organization: string
  - location_id: int, location: string ("City, Province")
  - start_date, end_date: date (inclusive)
  - decade: string ("1980s")
  - topic_id: int, topic / tags: string (comma separated, any of)
  - has_photos: bool
  - type: string
  - sort: date_desc | date_asc | title_asc | title_desc
  - lang: string (code or id)
  - page, limit: int

Response:
  - 200: []Entry with pagination meta
  - 400: Invalid filter values
*/
func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter, err := parseFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if filter.LanguageID, err = handler.languageID(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, total, err := handler.service.ListEntries(request.Context(), filter, paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/entries/{id}.

Response:
  - 200: Entry (with translations)
  - 404: Entry not found
*/
func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id", "Entry")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	languageID, err := handler.languageID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.GetEntry(request.Context(), id, languageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

// GET /api/v1/entries/{id}/related?limit=5.
func (handler *Handler) relatedEntries(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id", "Entry")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	languageID, err := handler.languageID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit := convert.ToIntD(request.URL.Query().Get(FieldLimit), DefaultRelatedLimit)

	entries, err := handler.service.RelatedEntries(request.Context(), id, languageID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// # Write Endpoints

/*
POST /api/v1/admin/entries.

Description: Creates an entry with its topics and translations in one
transaction.

Request (form or JSON):
  - title, date, organization_id, location_id, summary, source_link, has_photos, type
  - topics: JSON array of topic ids
  - translations: JSON array of {language_id, title, summary, source_link}

Response:
  - 201: {id}
  - 400: Validation failed
  - 422: Unknown topic, language, organization or location id
*/
func (handler *Handler) createEntry(writer http.ResponseWriter, request *http.Request) {
	body, err := readPayload(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := body.input()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := handler.service.CreateEntry(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, writeResult{ID: id})
}

/*
PUT /api/v1/admin/entries/{id}.

Description: Replaces the entry, its topics and its translations.

Response:
  - 200: Entry after the update
  - 404: Entry not found
*/
func (handler *Handler) updateEntry(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id", "Entry")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	body, err := readPayload(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := body.input()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateEntry(request.Context(), id, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.GetEntry(request.Context(), id, nil)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

// DELETE /api/v1/admin/entries/{id}.
func (handler *Handler) deleteEntry(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id", "Entry")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteEntry(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/contributions.

Description: Public submission. New organization and tag names are created on
first use.

Request (form or JSON):
  - title, date, summary, source_link, has_photos, type
  - organization_id or organization_name
  - location_id or location ("City, Province")
  - tags: comma separated topic names
  - title_fr, summary_fr: optional French translation

Response:
  - 201: {id}
  - 400: Validation failed
*/
func (handler *Handler) submitContribution(writer http.ResponseWriter, request *http.Request) {
	body, err := readPayload(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contribution, err := body.contribution()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := handler.service.SubmitContribution(request.Context(), contribution)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, writeResult{ID: id})
}

// # Helpers

func (handler *Handler) languageID(request *http.Request) (*int, error) {
	lang, err := handler.languages.ResolveLanguage(request.Context(), request.URL.Query().Get(FieldLang))
	if err != nil || lang == nil {
		return nil, err
	}
	return &lang.ID, nil
}

// parseFilter reads the search parameters. Malformed dates, decades and sorts
// are rejected instead of silently ignored.
func parseFilter(request *http.Request) (Filter, error) {
	params := request.URL.Query()
	validator := &validate.Validator{}

	filter := Filter{
		Query:          params.Get(FieldQuery),
		OrganizationID: convert.ToOptionalInt(params.Get(FieldOrganizationID)),
		Organization:   params.Get("organization"),
		LocationID:     convert.ToOptionalInt(params.Get(FieldLocationID)),
		TopicID:        convert.ToOptionalInt(params.Get(FieldTopicID)),
		HasPhotos:      convert.ToOptionalBool(params.Get(FieldHasPhotos)),
		Type:           params.Get(FieldType),
		Sort:           SortDateDesc,
	}

	if label := params.Get(FieldLocation); label != "" {
		filter.City, filter.Province = normalize.Location(label)
	}

	filter.Topics = append(query.StringSlice(params.Get(FieldTopic)), query.StringSlice(params.Get(FieldTags))...)

	if sort := params.Get(FieldSort); sort != "" {
		validator.OneOf(FieldSort, sort, string(SortDateDesc), string(SortDateAsc), string(SortTitleAsc), string(SortTitleDesc))
		filter.Sort = Sort(sort)
	}

	var err error
	filter.StartDate, err = convert.ToDate(params.Get(FieldStartDate))
	validator.Custom(FieldStartDate, err != nil, "Unrecognized date")

	filter.EndDate, err = convert.ToDate(params.Get(FieldEndDate))
	validator.Custom(FieldEndDate, err != nil, "Unrecognized date")

	if filter.StartDate != nil && filter.EndDate != nil {
		validator.Custom(FieldEndDate, filter.EndDate.Before(*filter.StartDate), "Must not be before start_date")
	}

	if raw := params.Get(FieldDecade); raw != "" {
		start, err := parseDecade(raw)
		validator.Custom(FieldDecade, err != nil, "Use the form 1980s")
		if err == nil {
			filter.DecadeStart = &start
		}
	}

	return filter, validator.Err()
}

// parseDecade converts "1980s" (or "1980") to 1980. Any year maps to the start
// of its decade.
func parseDecade(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "s"))
	if err != nil || year < 0 {
		return 0, strconv.ErrSyntax
	}
	return year - year%10, nil
}
