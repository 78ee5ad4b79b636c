// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// It is used to store and retrieve per-request values (account identity, request ID, logger).
// An unexported key type prevents collisions with third-party packages that
// also store values in the context.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the authenticated account claims ([sec.AuthClaims]).
	KeyUser key = "user"

	// KeyClientIP is the context key for the resolved client address.
	KeyClientIP key = "client_ip"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
