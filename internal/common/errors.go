// Package common defines shared constants and sentinel errors used across
// CredVault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Startup configuration errors. Fatal: the process must not start
	// without a database DSN, signing secret, and encryption key.
	ErrConfiguration = errors.New("configuration error")

	// Encryption/decryption failures (malformed blob, bad padding,
	// internal cipher fault).
	ErrCrypto = errors.New("crypto failure")

	// Auth boundary errors.
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrBadSignature   = errors.New("bad token signature")
	ErrUnknownSubject = errors.New("unknown token subject")
)
