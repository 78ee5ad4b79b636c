// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/sec"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	GenerateAccessToken(username, role string, timeToLive time.Duration) (string, error)
}

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "Bearer"

// Token is a freshly issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// errBadCredentials is the single answer for unknown names and wrong passwords.
var errBadCredentials = apperr.Unauthorized("Invalid username or password")

// Service implements the token login.
type Service struct {
	accounts AccountStore
	tokens   TokenProvider
	ttl      time.Duration
	logger   *slog.Logger

	// decoy is compared against when the account does not exist, so both
	// failure paths spend one bcrypt comparison.
	decoy string
}

// NewService constructs a new auth [Service] issuing tokens valid for ttl.
func NewService(accounts AccountStore, tokens TokenProvider, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	decoy, err := sec.HashPassword("pims-decoy-password")
	if err != nil {
		return nil, err
	}

	return &Service{
		accounts: accounts,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
		decoy:    decoy,
	}, nil
}

/*
IssueToken checks the credentials and signs an access token.

Parameters:
  - context: context.Context
  - username: string
  - password: string (plain text)

Returns:
  - *Token: Bearer token with its lifetime in seconds
  - error: UNAUTHORIZED for unknown accounts and wrong passwords alike
*/
func (service *Service) IssueToken(context context.Context, username, password string) (*Token, error) {

	// ── 1. Account Lookup ─────────────────────────────────────────────────
	account, err := service.accounts.FindByUsername(context, username)
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, err
		}
		sec.CheckPasswordHash(password, service.decoy)
		service.logger.WarnContext(context, "login_failed", slog.String("username", username))
		return nil, errBadCredentials
	}

	// ── 2. Password Check ─────────────────────────────────────────────────
	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		service.logger.WarnContext(context, "login_failed", slog.String("username", account.Username))
		return nil, errBadCredentials
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────
	accessToken, err := service.tokens.GenerateAccessToken(account.Username, string(account.Role), service.ttl)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "token_issued",
		slog.String("username", account.Username),
		slog.String("role", string(account.Role)),
	)

	return &Token{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int(service.ttl.Seconds()),
	}, nil
}
