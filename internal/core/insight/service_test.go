// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package insight_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pims-archive/pims/internal/core/insight"
	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/cache"
)

// fakeRepository serves fixed aggregates and counts how often each is computed.
type fakeRepository struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
	total int

	// duringStats runs after Stats has read its total and before it returns.
	duringStats func()
}

func newFake() *fakeRepository {
	return &fakeRepository{calls: map[string]int{}, total: 10}
}

func (f *fakeRepository) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeRepository) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRepository) Stats(context.Context) (insight.Stats, error) {
	if err := f.hit("stats"); err != nil {
		return insight.Stats{}, err
	}

	f.mu.Lock()
	total, during := f.total, f.duringStats
	f.duringStats = nil
	f.mu.Unlock()

	if during != nil {
		during()
	}
	return insight.Stats{TotalRecords: total, Organizations: 6, Cities: 9, Provinces: 7, Topics: 10}, nil
}

func (f *fakeRepository) CountByYear(context.Context) (map[int]int, error) {
	return map[int]int{1981: 1, 1994: 2}, f.hit("year")
}

func (f *fakeRepository) CountByMonth(context.Context) (map[int]int, error) {
	return map[int]int{6: 2, 12: 1}, f.hit("month")
}

func (f *fakeRepository) CountByTopic(context.Context) ([]insight.TopicCount, error) {
	return []insight.TopicCount{{Topic: "Pride", Count: 2}}, f.hit("topic")
}

func (f *fakeRepository) CountByProvince(context.Context) ([]insight.ProvinceCount, error) {
	return []insight.ProvinceCount{{Province: "Ontario", Count: 3}}, f.hit("province")
}

func (f *fakeRepository) CountByDecade(context.Context) (map[int]int, error) {
	return map[int]int{1990: 2, 1970: 1, 1980: 4}, f.hit("decade")
}

func (f *fakeRepository) CountByOrganization(context.Context) ([]insight.OrganizationCount, error) {
	return []insight.OrganizationCount{{Organization: "Egale", Count: 1}}, f.hit("organization")
}

func (f *fakeRepository) Entries(context.Context) ([]insight.EntryRow, error) {
	return []insight.EntryRow{{ID: 1, Title: "Pride Day"}}, f.hit("entries")
}

func newService(repo insight.Repository, store cache.Cache) *insight.Service {
	return insight.NewService(repo, store, time.Minute, nil, nil)
}

/*
TestEntriesByMonth_FullAxis verifies that all twelve months are present in
calendar order and sum to the dated entry count.
*/
func TestEntriesByMonth_FullAxis(t *testing.T) {
	service := newService(newFake(), nil)

	months, err := service.EntriesByMonth(context.Background())
	require.NoError(t, err)
	require.Len(t, months, 12)

	assert.Equal(t, "January", months[0].Month)
	assert.Equal(t, "December", months[11].Month)
	assert.Equal(t, 2, months[5].Count)
	assert.Equal(t, "June", months[5].Month)

	sum := 0
	for _, m := range months {
		sum += m.Count
	}
	assert.Equal(t, 3, sum)
}

func TestEntriesByYearAndDecade(t *testing.T) {
	service := newService(newFake(), nil)
	ctx := context.Background()

	years, err := service.EntriesByYear(ctx)
	require.NoError(t, err)
	assert.Equal(t, insight.YearCounts{"1981": 1, "1994": 2}, years)

	decades, err := service.EntriesByDecade(ctx)
	require.NoError(t, err)
	assert.Equal(t, []insight.DecadeCount{
		{Decade: "1970s", Count: 1},
		{Decade: "1980s", Count: 4},
		{Decade: "1990s", Count: 2},
	}, decades)
}

func TestStats_ZeroFilledOnError(t *testing.T) {
	repo := newFake()
	repo.err = errors.New("connection refused")
	service := newService(repo, nil)

	stats, err := service.Stats(context.Background())
	assert.Error(t, err)
	assert.Equal(t, insight.Stats{}, stats)
}

/*
TestCache_RememberAndInvalidate verifies that views are computed once per TTL
and recomputed after a write invalidates them.
*/
func TestCache_RememberAndInvalidate(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := newFake()
	store := cache.NewMemoryCache(time.Minute, 0)
	service := newService(repo, store)
	ctx := context.Background()

	// 1. Two reads, one computation
	for range 2 {
		stats, err := service.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, stats.TotalRecords)

		_, err = service.EntriesByMonth(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.count("stats"))
	assert.Equal(t, 1, repo.count("month"))

	// 2. Invalidation forces a reload
	require.NoError(t, service.Invalidate(ctx))

	_, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("stats"))

	// 3. Failures are not cached
	repo.err = errors.New("boom")
	require.NoError(t, service.Invalidate(ctx))
	_, err = service.Stats(ctx)
	require.Error(t, err)

	repo.err = nil
	_, err = service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.count("stats"))
}

/*
TestCache_WriteDuringLoad verifies that a load which overlaps a write does not
leave its stale result behind for later readers.
*/
func TestCache_WriteDuringLoad(t *testing.T) {
	repo := newFake()
	store := cache.NewMemoryCache(time.Minute, 0)
	service := newService(repo, store)
	ctx := context.Background()

	// 1. A write commits and invalidates while the first load is in flight
	repo.duringStats = func() {
		repo.mu.Lock()
		repo.total = 11
		repo.mu.Unlock()
		require.NoError(t, service.Invalidate(ctx))
	}

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalRecords)

	// 2. The next reader sees the write
	stats, err = service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, stats.TotalRecords)
	assert.Equal(t, 2, repo.count("stats"))

	// 3. And that result is cached
	_, err = service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("stats"))
}

func TestInvalidate_WithoutCache(t *testing.T) {
	assert.NoError(t, newService(newFake(), nil).Invalidate(context.Background()))
}

func TestView_Unknown(t *testing.T) {
	_, err := newService(newFake(), nil).View(context.Background(), "pride_records")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func newRouter(service *insight.Service) chi.Router {
	router := chi.NewRouter()
	router.Mount("/api/pims", insight.NewHandler(service).Routes())
	return router
}

func TestHandler_Views(t *testing.T) {
	router := newRouter(newService(newFake(), nil))

	tests := []struct {
		view string
		want string
	}{
		{insight.ViewStats, `{"totalRecords":10,"organizations":6,"cities":9,"provinces":7,"topics":10}`},
		{insight.ViewEventsByYear, `{"1981":1,"1994":2}`},
		{insight.ViewEventsByTopic, `[{"topic":"Pride","count":2}]`},
		{insight.ViewEventsByProvince, `[{"province":"Ontario","count":3}]`},
		{insight.ViewEventsByOrganization, `[{"organization":"Egale","count":1}]`},
		{insight.ViewEntries, `[{"id":1,"title":"Pride Day","date":null,"summary":null,"source_link":null,
			"has_photos":false,"type":null,"city":null,"province":null,"organization_name":null}]`},
	}

	for _, tc := range tests {
		t.Run(tc.view, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/pims?type="+tc.view, nil))

			require.Equal(t, http.StatusOK, recorder.Code)
			assert.JSONEq(t, tc.want, recorder.Body.String())
		})
	}
}

func TestHandler_InvalidType(t *testing.T) {
	router := newRouter(newService(newFake(), nil))

	for _, target := range []string{"/api/pims", "/api/pims?type=nope"} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code, target)
		assert.JSONEq(t, `{"error":"Invalid request type","code":"VALIDATION_ERROR"}`, recorder.Body.String())
	}
}

func TestHandler_Failures(t *testing.T) {
	t.Run("internal", func(t *testing.T) {
		repo := newFake()
		repo.err = errors.New("connection reset")

		recorder := httptest.NewRecorder()
		newRouter(newService(repo, nil)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/pims?type=events-by-topic", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"code":"INTERNAL_ERROR"`)
		assert.NotContains(t, recorder.Body.String(), "connection reset")
	})

	t.Run("schema missing", func(t *testing.T) {
		repo := newFake()
		repo.err = apperr.SchemaNotInitialized(errors.New(`relation "pims_main" does not exist`))

		recorder := httptest.NewRecorder()
		newRouter(newService(repo, nil)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/pims?type=stats", nil))

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"code":"SCHEMA_NOT_INITIALIZED"`)
	})
}
