// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package entry

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pims-archive/pims/internal/platform/metrics"
	"github.com/pims-archive/pims/internal/platform/validate"
	"github.com/pims-archive/pims/pkg/normalize"
	"github.com/pims-archive/pims/pkg/pagination"
	"github.com/pims-archive/pims/pkg/pointer"
	"github.com/pims-archive/pims/pkg/query"
	"github.com/pims-archive/pims/pkg/slice"
)

// # Service Layer

// Service orchestrates the business rules for archive entries.
type Service struct {
	repo        Repository
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewService constructs a new entry [Service].
//
// invalidator and m may be nil.
func NewService(repo Repository, invalidator Invalidator, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		metrics:     m,
		logger:      logger,
	}
}

// # Entry Lookups

/*
ListEntries retrieves one page of entries matching filter.

Parameters:
  - context: context.Context
  - filter: Filter
  - page: pagination.Params (clamped to the allowed range)

Returns:
  - []*Entry: The page
  - int: Total matches across all pages
  - error: Repository errors
*/
func (service *Service) ListEntries(context context.Context, filter Filter, page pagination.Params) ([]*Entry, int, error) {
	page = page.Normalize()

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Organization = normalize.Name(filter.Organization)
	filter.City = normalize.Name(filter.City)
	filter.Province = normalize.Name(filter.Province)
	filter.Type = strings.TrimSpace(filter.Type)

	filter.Topics = slice.Filter(slice.Map(filter.Topics, normalize.Key), func(key string) bool { return key != "" })

	return service.repo.List(context, filter, page.Limit, page.Offset())
}

// GetEntry fetches a single entry, localized into languageID when set.
func (service *Service) GetEntry(context context.Context, id int, languageID *int) (*Entry, error) {
	return service.repo.FindByID(context, id, languageID)
}

// RelatedEntries returns entries related to id. limit is clamped to 1..MaxRelatedLimit.
func (service *Service) RelatedEntries(context context.Context, id int, languageID *int, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if limit > MaxRelatedLimit {
		limit = MaxRelatedLimit
	}
	return service.repo.Related(context, id, languageID, limit)
}

// # Entry Management

/*
CreateEntry validates and stores a new entry with its topics and translations.

Parameters:
  - context: context.Context
  - input: *Input

Returns:
  - int: The new entry id
  - error: VALIDATION_ERROR, or a repository error (nothing stored)
*/
func (service *Service) CreateEntry(context context.Context, input *Input) (int, error) {
	prepareInput(input)

	if err := validateInput(input); err != nil {
		return 0, err
	}

	id, err := service.repo.Create(context, input)
	if err != nil {
		return 0, err
	}

	service.logger.InfoContext(context, "entry_created",
		slog.Int("entry_id", id),
		slog.Int("topics", len(input.TopicIDs)),
	)
	service.afterWrite(context, "create")

	return id, nil
}

// UpdateEntry validates input and replaces entry id with it.
func (service *Service) UpdateEntry(context context.Context, id int, input *Input) error {
	prepareInput(input)

	if err := validateInput(input); err != nil {
		return err
	}

	if err := service.repo.Update(context, id, input); err != nil {
		return err
	}

	service.logger.InfoContext(context, "entry_updated", slog.Int("entry_id", id))
	service.afterWrite(context, "update")

	return nil
}

// DeleteEntry removes an entry with its topic links and translations.
func (service *Service) DeleteEntry(context context.Context, id int) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "entry_deleted", slog.Int("entry_id", id))
	service.afterWrite(context, "delete")

	return nil
}

/*
SubmitContribution stores a public submission.

Description: Tags are de-duplicated case-insensitively before topics are
resolved. A summary is required, unlike the admin form.

Parameters:
  - context: context.Context
  - contribution: *Contribution

Returns:
  - int: The new entry id
  - error: VALIDATION_ERROR, or a repository error (nothing stored)
*/
func (service *Service) SubmitContribution(context context.Context, contribution *Contribution) (int, error) {
	prepareFields(&contribution.Fields)
	contribution.OrganizationName = normalize.Name(contribution.OrganizationName)
	contribution.LocationLabel = strings.TrimSpace(contribution.LocationLabel)
	contribution.Tags = uniqueTags(contribution.Tags)

	if err := validateContribution(contribution); err != nil {
		return 0, err
	}

	id, err := service.repo.CreateContribution(context, contribution)
	if err != nil {
		return 0, err
	}

	service.logger.InfoContext(context, "contribution_received",
		slog.Int("entry_id", id),
		slog.Int("tags", len(contribution.Tags)),
	)
	service.afterWrite(context, "contribute")

	return id, nil
}

// afterWrite records the write and drops derived dashboard data.
// An invalidation failure is logged; the write itself already committed.
func (service *Service) afterWrite(context context.Context, op string) {
	service.metrics.EntryWrite(op)

	if service.invalidator == nil {
		return
	}
	if err := service.invalidator.Invalidate(context); err != nil {
		service.logger.WarnContext(context, "dashboard_invalidate_failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
	}
}

// # Input Rules

func prepareFields(f *Fields) {
	f.Title = strings.TrimSpace(f.Title)
	f.Summary = trimOptional(f.Summary)
	f.SourceLink = trimOptional(f.SourceLink)
	f.Type = trimOptional(f.Type)
}

func prepareInput(input *Input) {
	prepareFields(&input.Fields)
	input.TopicIDs = query.UniqueInts(input.TopicIDs)

	kept := make([]Translation, 0, len(input.Translations))
	for _, t := range input.Translations {
		if t.IsBlank() {
			continue
		}
		t.Title = strings.TrimSpace(t.Title)
		t.Summary = strings.TrimSpace(t.Summary)
		t.SourceLink = trimOptional(t.SourceLink)
		kept = append(kept, t)
	}
	input.Translations = kept
}

func validateFields(validator *validate.Validator, f *Fields) {
	validator.Required(FieldTitle, f.Title).MaxLen(FieldTitle, f.Title, MaxTitleLength)
	validator.Positive(FieldOrganizationID, f.OrganizationID)
	validator.Positive(FieldLocationID, f.LocationID)
	validator.HTTPURL(FieldSourceLink, f.SourceLink)
	if f.Type != nil {
		validator.MaxLen(FieldType, *f.Type, MaxNameLength)
	}
}

func validateInput(input *Input) error {
	validator := &validate.Validator{}
	validateFields(validator, &input.Fields)

	for _, id := range input.TopicIDs {
		validator.Custom(FieldTopics, id <= 0, "Topic ids must be positive numbers")
	}

	languages := make(map[int]struct{}, len(input.Translations))
	for _, t := range input.Translations {
		_, dup := languages[t.LanguageID]
		languages[t.LanguageID] = struct{}{}

		validator.Custom(FieldTranslations, t.LanguageID <= 0, "Each translation needs a language_id")
		validator.Custom(FieldTranslations, dup, "Only one translation per language is allowed")
		validator.MaxLen(FieldTranslations, t.Title, MaxTitleLength)
		validator.HTTPURL(FieldTranslations, t.SourceLink)
	}

	return validator.Err()
}

func validateContribution(contribution *Contribution) error {
	validator := &validate.Validator{}
	validateFields(validator, &contribution.Fields)

	validator.Required(FieldSummary, pointer.Val(contribution.Summary))
	validator.MaxLen(FieldOrganizationName, contribution.OrganizationName, MaxNameLength)

	if contribution.LocationLabel != "" {
		city, province, _ := strings.Cut(contribution.LocationLabel, ",")
		validator.Custom(FieldLocation, isBlank(city) || isBlank(province), "Use the form \"City, Province\"")
	}

	for _, tag := range contribution.Tags {
		validator.MaxLen(FieldTags, tag, MaxNameLength)
	}

	if t := contribution.Translation; t != nil && !t.IsBlank() {
		validator.MaxLen(FieldTitleFR, t.Title, MaxTitleLength)
	}

	return validator.Err()
}

// uniqueTags normalizes tag names and keeps the first spelling of each.
func uniqueTags(tags []string) []string {
	return query.DedupeFold(slice.Map(tags, normalize.Name))
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
