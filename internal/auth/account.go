// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package auth issues access tokens to the archive's staff accounts.

There is no registration: accounts are listed in PIMS_ACCOUNTS as
"name:role:bcrypt-hash" triples and loaded once at startup. A successful login
returns a short-lived HS256 token carrying the account's role, which
[middleware.Authenticate] verifies on later requests.
*/
package auth

import (
	"fmt"
	"strings"

	"github.com/pims-archive/pims/internal/platform/sec"
)

// Account is one configured staff login.
type Account struct {
	Username     string
	Role         sec.UserRole
	PasswordHash string
}

/*
ParseAccounts reads "name:role:bcrypt-hash" entries.

Blank entries are ignored. The hash itself contains '$' but never ':', so the
entry is split on the first two colons only.

Returns:
  - []Account: Accounts in configuration order
  - error: Malformed entries, unknown roles or duplicate names
*/
func ParseAccounts(entries []string) ([]Account, error) {
	accounts := make([]Account, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("auth: account %d: expected name:role:bcrypt-hash", i+1)
		}

		account := Account{
			Username:     strings.TrimSpace(parts[0]),
			Role:         sec.UserRole(strings.ToLower(strings.TrimSpace(parts[1]))),
			PasswordHash: strings.TrimSpace(parts[2]),
		}

		if !account.Role.Valid() {
			return nil, fmt.Errorf("auth: account %q: unknown role %q", account.Username, parts[1])
		}
		if !strings.HasPrefix(account.PasswordHash, "$2") {
			return nil, fmt.Errorf("auth: account %q: password must be a bcrypt hash", account.Username)
		}

		key := strings.ToLower(account.Username)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("auth: account %q is listed twice", account.Username)
		}
		seen[key] = struct{}{}

		accounts = append(accounts, account)
	}

	return accounts, nil
}
