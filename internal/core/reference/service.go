// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package reference

import (
	"context"
	"strconv"
	"strings"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/validate"
)

// # Service Layer

// Service orchestrates business rules for reference data.
type Service struct {
	repo Repository
}

// NewService constructs a new reference [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// # Language Methods

// ListLanguages returns every supported language.
func (service *Service) ListLanguages(context context.Context) ([]*Language, error) {
	return service.repo.ListLanguages(context)
}

/*
ResolveLanguage turns the value of a "lang" parameter into a language.

Both codes ("fr") and numeric ids ("2") are accepted. An empty value means no
localization and returns nil without error.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *Language: The resolved language, or nil for an empty value
  - error: VALIDATION_ERROR when the language is unknown
*/
func (service *Service) ResolveLanguage(context context.Context, value string) (*Language, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var (
		lang *Language
		err  error
	)

	if id, convErr := strconv.Atoi(value); convErr == nil {
		lang, err = service.repo.GetLanguageByID(context, id)
	} else {
		lang, err = service.repo.GetLanguageByCode(context, value)
	}

	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, validate.RequiredError(FieldLang, "Unknown language: "+value)
	}
	return lang, err
}

// # Topic Methods

// ListTopics returns all topics, localized into lang when it is not nil.
func (service *Service) ListTopics(context context.Context, lang *Language) ([]*Topic, error) {
	var languageID *int
	if lang != nil {
		languageID = &lang.ID
	}
	return service.repo.ListTopics(context, languageID)
}

// # Provenance Methods

// ListOrganizations returns every organization.
func (service *Service) ListOrganizations(context context.Context) ([]*Organization, error) {
	return service.repo.ListOrganizations(context)
}

// ListLocations returns every location.
func (service *Service) ListLocations(context context.Context) ([]*Location, error) {
	return service.repo.ListLocations(context)
}
