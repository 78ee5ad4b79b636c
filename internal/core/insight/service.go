// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package insight

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/cache"
	"github.com/pims-archive/pims/internal/platform/constants"
	"github.com/pims-archive/pims/internal/platform/metrics"
)

// Service shapes repository aggregates into the dashboard views and caches them.
type Service struct {
	repo    Repository
	store   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService constructs a new insight [Service].
//
// store may be nil, in which case every call reaches the database.
func NewService(repo Repository, store cache.Cache, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, ttl: ttl, metrics: m, logger: logger}
}

// generationKey holds the counter that [Service.Invalidate] bumps. Views are
// cached under the generation current when their load started, so a load that
// overlaps a write can only fill a key nobody reads any more.
const generationKey = constants.CachePrefixInsight + "generation"

// Key returns the cache key of a view in a cache generation.
func Key(generation int64, view string) string {
	return fmt.Sprintf("%sg%d:%s", constants.CachePrefixInsight, generation, view)
}

/*
View returns the named dashboard view.

Parameters:
  - context: context.Context
  - view: string (one of [Views])

Returns:
  - any: The JSON-ready view
  - error: VALIDATION_ERROR for an unknown view, or a repository error
*/
func (service *Service) View(context context.Context, view string) (any, error) {
	switch view {
	case ViewStats:
		return service.Stats(context)
	case ViewEventsByYear:
		return service.EntriesByYear(context)
	case ViewEventsByMonth:
		return service.EntriesByMonth(context)
	case ViewEventsByTopic:
		return service.EntriesByTopic(context)
	case ViewEventsByProvince:
		return service.EntriesByProvince(context)
	case ViewEventsByDecade:
		return service.EntriesByDecade(context)
	case ViewEventsByOrganization:
		return service.EntriesByOrganization(context)
	case ViewEntries:
		return service.Entries(context)
	default:
		return nil, ErrInvalidView
	}
}

// ErrInvalidView is returned for a missing or unknown "type" parameter.
var ErrInvalidView = apperr.ValidationError("Invalid request type")

// Stats returns the headline counters. The value is zero-filled when err is set.
func (service *Service) Stats(context context.Context) (Stats, error) {
	stats, err := remember(context, service, ViewStats, service.repo.Stats)
	if err != nil {
		service.logger.ErrorContext(context, "insight_stats_failed", slog.Any("error", err))
		return Stats{}, err
	}
	return stats, nil
}

// EntriesByYear counts dated entries per year, keyed "1981".
func (service *Service) EntriesByYear(ctx context.Context) (YearCounts, error) {
	return remember(ctx, service, ViewEventsByYear, func(context context.Context) (YearCounts, error) {
		counts, err := service.repo.CountByYear(context)
		if err != nil {
			return nil, err
		}

		out := make(YearCounts, len(counts))
		for year, count := range counts {
			out[strconv.Itoa(year)] = count
		}
		return out, nil
	})
}

// EntriesByMonth returns all twelve months in calendar order, zero when empty.
func (service *Service) EntriesByMonth(ctx context.Context) ([]MonthCount, error) {
	return remember(ctx, service, ViewEventsByMonth, func(context context.Context) ([]MonthCount, error) {
		counts, err := service.repo.CountByMonth(context)
		if err != nil {
			return nil, err
		}

		out := make([]MonthCount, 0, 12)
		for month := time.January; month <= time.December; month++ {
			out = append(out, MonthCount{Month: month.String(), Count: counts[int(month)]})
		}
		return out, nil
	})
}

func (service *Service) EntriesByTopic(context context.Context) ([]TopicCount, error) {
	return remember(context, service, ViewEventsByTopic, service.repo.CountByTopic)
}

func (service *Service) EntriesByProvince(context context.Context) ([]ProvinceCount, error) {
	return remember(context, service, ViewEventsByProvince, service.repo.CountByProvince)
}

// EntriesByDecade returns decades in ascending order, labelled "1980s".
func (service *Service) EntriesByDecade(ctx context.Context) ([]DecadeCount, error) {
	return remember(ctx, service, ViewEventsByDecade, func(context context.Context) ([]DecadeCount, error) {
		counts, err := service.repo.CountByDecade(context)
		if err != nil {
			return nil, err
		}

		decades := make([]int, 0, len(counts))
		for decade := range counts {
			decades = append(decades, decade)
		}
		sort.Ints(decades)

		out := make([]DecadeCount, 0, len(decades))
		for _, decade := range decades {
			out = append(out, DecadeCount{Decade: fmt.Sprintf("%ds", decade), Count: counts[decade]})
		}
		return out, nil
	})
}

func (service *Service) EntriesByOrganization(context context.Context) ([]OrganizationCount, error) {
	return remember(context, service, ViewEventsByOrganization, service.repo.CountByOrganization)
}

func (service *Service) Entries(context context.Context) ([]EntryRow, error) {
	return remember(context, service, ViewEntries, service.repo.Entries)
}

/*
Invalidate starts a new cache generation and drops the views of the previous one.

It satisfies the entry package's invalidation hook and is called after each
committed write.
*/
func (service *Service) Invalidate(context context.Context) error {
	if service.store == nil {
		return nil
	}

	generation, err := service.store.Incr(context, generationKey)
	if err != nil {
		return fmt.Errorf("insight: invalidate: %w", err)
	}

	keys := make([]string, len(Views))
	for i, view := range Views {
		keys[i] = Key(generation-1, view)
	}

	// Old keys are unreachable now; deleting them only frees memory early.
	if err := service.store.Delete(context, keys...); err != nil {
		return fmt.Errorf("insight: invalidate: %w", err)
	}
	return nil
}

// remember wraps [cache.Remember] and bypasses it when no cache is configured
// or the current generation cannot be read.
func remember[T any](context context.Context, service *Service, view string, load func(context.Context) (T, error)) (T, error) {
	if service.store == nil {
		return load(context)
	}

	generation, err := service.store.Counter(context, generationKey)
	if err != nil {
		service.metrics.CacheLookup("error")
		service.logger.WarnContext(context, "cache_generation_failed", slog.Any("error", err))
		return load(context)
	}

	return cache.Remember(context, service.store, service.metrics, Key(generation, view), service.ttl, load)
}
