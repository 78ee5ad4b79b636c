// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, header names, cache keys, and cross-cutting identifiers
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: IP tracking TTLs.
  - Security: token issuer.
  - Cache Taxonomy: key prefixes for dashboard aggregates.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "pims-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// CSV uploads go through the same server, hence the generous value.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// StartupTimeout bounds database and cache connection at boot.
	StartupTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// ContributionRPS and ContributionBurst bound public submissions per IP:
	// a burst of five, then one every ten seconds.
	ContributionRPS   = 0.1
	ContributionBurst = 5
)

// # Request Limits

const (
	// MaxFormBytes bounds urlencoded and multipart entry forms.
	MaxFormBytes = 1 << 20

	// MaxImportBytes bounds CSV uploads.
	MaxImportBytes = 32 << 20
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "pims.archive"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Cache Taxonomy

const (
	// CachePrefixInsight namespaces the dashboard aggregates.
	CachePrefixInsight = "pims:insight:"
)
