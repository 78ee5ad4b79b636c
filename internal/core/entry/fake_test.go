// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package entry_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pims-archive/pims/internal/core/entry"
	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/platform/apperr"
)

// fakeRepository records what the service hands to storage.
type fakeRepository struct {
	mu sync.Mutex

	entries map[int]*entry.Entry
	nextID  int
	err     error

	lastFilter       entry.Filter
	lastLimit        int
	lastOffset       int
	lastInput        *entry.Input
	lastContribution *entry.Contribution
	relatedLimit     int
	deleted          []int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{entries: map[int]*entry.Entry{}, nextID: 1}
}

func (f *fakeRepository) List(_ context.Context, filter entry.Filter, limit, offset int) ([]*entry.Entry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastFilter, f.lastLimit, f.lastOffset = filter, limit, offset
	if f.err != nil {
		return nil, 0, f.err
	}

	out := make([]*entry.Entry, 0, len(f.entries))
	for id := 1; id < f.nextID; id++ {
		if e, ok := f.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id int, _ *int) (*entry.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.entries[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("Entry")
}

func (f *fakeRepository) Related(_ context.Context, id int, _ *int, limit int) ([]*entry.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.relatedLimit = limit
	if _, ok := f.entries[id]; !ok {
		return nil, apperr.NotFound("Entry")
	}
	return []*entry.Entry{}, nil
}

func (f *fakeRepository) Create(_ context.Context, input *entry.Input) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastInput = input
	if f.err != nil {
		return 0, f.err
	}
	return f.store(input.Fields), nil
}

func (f *fakeRepository) Update(_ context.Context, id int, input *entry.Input) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastInput = input
	if _, ok := f.entries[id]; !ok {
		return apperr.NotFound("Entry")
	}
	f.entries[id].Title = input.Title
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[id]; !ok {
		return apperr.NotFound("Entry")
	}
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepository) CreateContribution(_ context.Context, contribution *entry.Contribution) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastContribution = contribution
	if f.err != nil {
		return 0, f.err
	}
	return f.store(contribution.Fields), nil
}

func (f *fakeRepository) store(fields entry.Fields) int {
	id := f.nextID
	f.nextID++
	f.entries[id] = &entry.Entry{ID: id, Title: fields.Title, Topics: []entry.TopicRef{}}
	return id
}

// countingInvalidator counts dashboard invalidations.
type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// staticLanguages knows English (1) and French (2).
type staticLanguages struct{}

func (staticLanguages) ResolveLanguage(_ context.Context, value string) (*reference.Language, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return nil, nil
	case "en", "1":
		return &reference.Language{ID: 1, Name: "English", Code: "en"}, nil
	case "fr", "2":
		return &reference.Language{ID: 2, Name: "French", Code: "fr"}, nil
	default:
		return nil, apperr.ValidationError("Unknown language: " + value)
	}
}

var errStorage = errors.New("storage unavailable")
