// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package entry_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/core/entry"
	"github.com/pims-archive/pims/internal/platform/ctxutil"
	"github.com/pims-archive/pims/internal/platform/sec"
)

// asUser injects claims the way the JWT middleware would.
func asUser(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := &sec.AuthClaims{Username: "archivist", Role: string(role)}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

type fixture struct {
	repo   *fakeRepository
	router chi.Router
}

// newFixture mounts the entry routes; role "" leaves requests anonymous.
func newFixture(t *testing.T, role sec.UserRole) *fixture {
	t.Helper()

	repo := newFakeRepository()
	handler := entry.NewHandler(entry.NewService(repo, &countingInvalidator{}, nil, nil), staticLanguages{})

	router := chi.NewRouter()
	if role != "" {
		router.Use(asUser(role))
	}
	router.Mount("/api/v1/entries", handler.Routes())
	router.Mount("/api/v1/admin/entries", handler.AdminRoutes())
	router.Mount("/api/v1/contributions", handler.ContributionRoutes())

	return &fixture{repo: repo, router: router}
}

func (f *fixture) do(request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeID(t *testing.T, recorder *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body.Data.ID
}

/*
TestListEntries_FilterParsing verifies that every search parameter reaches the
repository in its parsed form.
*/
func TestListEntries_FilterParsing(t *testing.T) {
	f := newFixture(t, "")

	params := url.Values{
		"q":           {"march"},
		"location":    {"Toronto,  Ontario"},
		"topic":       {"Parade"},
		"tags":        {"Legal Rights,parade"},
		"decade":      {"1980s"},
		"sort":        {"title_asc"},
		"has_photos":  {"true"},
		"start_date":  {"1981-01-01"},
		"end_date":    {"1981-12-31"},
		"lang":        {"fr"},
		"page":        {"3"},
		"limit":       {"5"},
		"topic_id":    {"4"},
		"location_id": {"abc"},
	}

	recorder := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/entries?"+params.Encode(), nil))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	got := f.repo.lastFilter

	// 1. Text and location
	assert.Equal(t, "march", got.Query)
	assert.Equal(t, "Toronto", got.City)
	assert.Equal(t, "Ontario", got.Province)
	assert.Nil(t, got.LocationID, "non-numeric ids are ignored")

	// 2. Topics
	assert.Equal(t, []string{"parade", "legal rights", "parade"}, got.Topics)
	require.NotNil(t, got.TopicID)
	assert.Equal(t, 4, *got.TopicID)

	// 3. Ranges and flags
	require.NotNil(t, got.DecadeStart)
	assert.Equal(t, 1980, *got.DecadeStart)
	assert.Equal(t, time.Date(1981, 1, 1, 0, 0, 0, 0, time.UTC), *got.StartDate)
	assert.Equal(t, time.Date(1981, 12, 31, 0, 0, 0, 0, time.UTC), *got.EndDate)
	require.NotNil(t, got.HasPhotos)
	assert.True(t, *got.HasPhotos)

	// 4. Presentation
	assert.Equal(t, entry.SortTitleAsc, got.Sort)
	require.NotNil(t, got.LanguageID)
	assert.Equal(t, 2, *got.LanguageID)
	assert.Equal(t, 5, f.repo.lastLimit)
	assert.Equal(t, 10, f.repo.lastOffset)

	var body struct {
		Meta struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Meta.Page)
	assert.Equal(t, 5, body.Meta.Limit)
}

func TestListEntries_Defaults(t *testing.T) {
	f := newFixture(t, "")

	recorder := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, entry.SortDateDesc, f.repo.lastFilter.Sort)
	assert.Nil(t, f.repo.lastFilter.LanguageID)
	assert.Empty(t, f.repo.lastFilter.Topics)
	assert.JSONEq(t, `{"data":[],"meta":{"page":1,"limit":20,"total":0,"total_pages":0}}`, recorder.Body.String())
}

func TestListEntries_RejectsBadParameters(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown sort", "sort=random"},
		{"bad start date", "start_date=yesterday-ish"},
		{"end before start", "start_date=1990-01-01&end_date=1980-01-01"},
		{"bad decade", "decade=eighties"},
		{"unknown language", "lang=de"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "")

			recorder := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/entries?"+tc.query, nil))

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"code":"VALIDATION_ERROR"`)
		})
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	f := newFixture(t, "")

	recorder := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/entries/42", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.JSONEq(t, `{"error":"Entry not found","code":"NOT_FOUND"}`, recorder.Body.String())

	recorder = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/entries/42/related", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestEntryRoutes_MalformedID verifies that a path id which is not a positive
integer is a validation error, not a missing entry.
*/
func TestEntryRoutes_MalformedID(t *testing.T) {
	f := newFixture(t, sec.RoleEditor)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"get word", http.MethodGet, "/api/v1/entries/abc"},
		{"get zero", http.MethodGet, "/api/v1/entries/0"},
		{"related negative", http.MethodGet, "/api/v1/entries/-3/related"},
		{"delete word", http.MethodDelete, "/api/v1/admin/entries/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.do(httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"code":"VALIDATION_ERROR"`)
			assert.Contains(t, recorder.Body.String(), `"field":"id"`)
		})
	}
}

func TestRelatedEntries_LimitParam(t *testing.T) {
	f := newFixture(t, "")
	f.repo.entries[1] = &entry.Entry{ID: 1, Title: "Seed"}
	f.repo.nextID = 2

	recorder := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/entries/1/related?limit=50", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, entry.MaxRelatedLimit, f.repo.relatedLimit)
	assert.JSONEq(t, `{"data":[]}`, recorder.Body.String())
}

/*
TestCreateEntry_Form verifies the admin form path: topics and translations
arrive as JSON-encoded form fields.
*/
func TestCreateEntry_Form(t *testing.T) {
	f := newFixture(t, sec.RoleEditor)

	form := url.Values{
		"title":        {"Bathhouse Raids Protest"},
		"date":         {"1981-02-06"},
		"summary":      {"Thousands marched on 52 Division."},
		"has_photos":   {"1"},
		"topics":       {"[1, 2, 2]"},
		"translations": {`[{"language_id":2,"title":"Manifestation","summary":""}]`},
	}
	request := httptest.NewRequest(http.MethodPost, "/api/v1/admin/entries", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := f.do(request)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.Equal(t, 1, decodeID(t, recorder))

	got := f.repo.lastInput
	assert.Equal(t, "Bathhouse Raids Protest", got.Title)
	assert.Equal(t, time.Date(1981, 2, 6, 0, 0, 0, 0, time.UTC), *got.Date)
	assert.True(t, got.HasPhotos)
	assert.Equal(t, []int{1, 2}, got.TopicIDs)
	require.Len(t, got.Translations, 1)
	assert.Equal(t, "Manifestation", got.Translations[0].Title)
}

func TestCreateEntry_JSON(t *testing.T) {
	f := newFixture(t, sec.RoleAdmin)

	body := `{"title":"Pride Day","date":"June 28, 1981","organization_id":3,"has_photos":false,"topics":[5],"translations":"undefined"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/admin/entries", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := f.do(request)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	got := f.repo.lastInput
	require.NotNil(t, got.OrganizationID)
	assert.Equal(t, 3, *got.OrganizationID)
	assert.Equal(t, time.Date(1981, 6, 28, 0, 0, 0, 0, time.UTC), *got.Date)
	assert.Equal(t, []int{5}, got.TopicIDs)
	assert.Empty(t, got.Translations)
}

func TestCreateEntry_BadPayloads(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"missing title", url.Values{"summary": {"x"}}, http.StatusBadRequest},
		{"topics not json", url.Values{"title": {"T"}, "topics": {"1,2"}}, http.StatusBadRequest},
		{"unparseable date", url.Values{"title": {"T"}, "date": {"the day after"}}, http.StatusBadRequest},
		{"huge body", url.Values{"title": {strings.Repeat("x", 2<<20)}}, http.StatusRequestEntityTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, sec.RoleEditor)

			request := httptest.NewRequest(http.MethodPost, "/api/v1/admin/entries", strings.NewReader(tc.form.Encode()))
			request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			recorder := f.do(request)
			assert.Equal(t, tc.status, recorder.Code, recorder.Body.String())
			assert.Nil(t, f.repo.lastInput)
		})
	}
}

func TestAdminRoutes_RequireEditor(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t, "")
		recorder := f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/entries/1", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t, sec.UserRole("viewer"))
		recorder := f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/entries/1", nil))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestUpdateAndDeleteEntry_HTTP(t *testing.T) {
	f := newFixture(t, sec.RoleEditor)
	f.repo.entries[7] = &entry.Entry{ID: 7, Title: "Old"}
	f.repo.nextID = 8

	// 1. Update returns the stored entry
	request := httptest.NewRequest(http.MethodPut, "/api/v1/admin/entries/7", strings.NewReader(`{"title":"New"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := f.do(request)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Contains(t, recorder.Body.String(), `"title":"New"`)

	// 2. Delete
	recorder = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/entries/7", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())

	// 3. Gone
	recorder = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/entries/7", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/entries/abc", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSubmitContribution_Multipart(t *testing.T) {
	f := newFixture(t, "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"title":           "Dyke March",
		"summary":         "First Dyke March in the city.",
		"date":            "1996-06-29",
		"organization_id": "Test Org",
		"location":        "Alpha, Beta",
		"tags":            "Parade, parade, Women",
		"title_fr":        "Marche des lesbiennes",
	} {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", &buf)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := f.do(request)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	got := f.repo.lastContribution
	assert.Nil(t, got.OrganizationID)
	assert.Equal(t, "Test Org", got.OrganizationName)
	assert.Equal(t, "Alpha, Beta", got.LocationLabel)
	assert.Equal(t, []string{"Parade", "Women"}, got.Tags)
	require.NotNil(t, got.Translation)
	assert.Equal(t, entry.ContributionLanguage, got.Translation.LanguageCode)
	assert.Equal(t, "Marche des lesbiennes", got.Translation.Title)
}

func TestSubmitContribution_JSONRequiresSummary(t *testing.T) {
	f := newFixture(t, "")

	request := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(`{"title":"No summary"}`))
	request.Header.Set("Content-Type", "application/json")

	recorder := f.do(request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"field":"summary"`)
	assert.Nil(t, f.repo.lastContribution)
}
