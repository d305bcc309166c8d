// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: IP tracking TTLs.
  - Security: JWT issuer and token types.
  - Delivery: Upload limits and storage prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "edustream-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Multipart video uploads are streamed, so this is deliberately generous.
	DefaultReadTimeout = 15 * time.Minute

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 15 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for non-upload request lifecycles.
	GlobalRequestTimeout = 30 * time.Second

	// UploadRequestTimeout is the deadline for multipart video uploads.
	UploadRequestTimeout = 15 * time.Minute

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "edustream.io"

	// TokenTypeAccess marks short-lived bearer tokens.
	TokenTypeAccess = "access"

	// TokenTypeRefresh marks long-lived tokens that may only mint access tokens.
	TokenTypeRefresh = "refresh"

	// BcryptCost is the fixed work factor for password hashes.
	BcryptCost = 10

	// ResetTokenBytes is the entropy of a password reset token.
	ResetTokenBytes = 32
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Delivery

const (
	// VideoKeyPrefix namespaces video objects inside the bucket.
	VideoKeyPrefix = "videos/"

	// MultipartMemory is the in-memory threshold before multipart parts spill to disk.
	MultipartMemory = 32 << 20
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixCourse = "catalog:course:"
)
