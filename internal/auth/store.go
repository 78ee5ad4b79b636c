// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package auth

import (
	"context"
	"strings"

	"github.com/pims-archive/pims/internal/platform/apperr"
)

// AccountStore defines the lookup contract for staff accounts.
type AccountStore interface {
	// FindByUsername returns the account with the given name, compared
	// case-insensitively.
	//
	// Returns [apperr.NotFound] if no such account is configured.
	FindByUsername(context context.Context, username string) (*Account, error)
}

// StaticAccountStore serves the accounts parsed from configuration.
type StaticAccountStore struct {
	accounts map[string]Account
}

// NewStaticAccountStore indexes accounts by lowercased username.
func NewStaticAccountStore(accounts []Account) *StaticAccountStore {
	index := make(map[string]Account, len(accounts))
	for _, account := range accounts {
		index[strings.ToLower(account.Username)] = account
	}
	return &StaticAccountStore{accounts: index}
}

// FindByUsername implements [AccountStore].
func (store *StaticAccountStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	account, ok := store.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return &account, nil
}

// Len returns the number of configured accounts.
func (store *StaticAccountStore) Len() int {
	return len(store.accounts)
}
