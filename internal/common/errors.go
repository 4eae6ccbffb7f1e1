// Package common defines shared constants and sentinel errors used across
// the Snapster server layers. Callers should use errors.Is to match these
// values.
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

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Media handling errors. ErrNormalizationFailed never leaves the storage
	// package: the ingestion pipeline falls back to the original bytes.
	ErrInvalidMediaType    = errors.New("invalid media type")
	ErrNormalizationFailed = errors.New("image normalization failed")

	// Object storage faults. These are infrastructure errors and may be retried
	// by the caller.
	ErrStorageWriteFailed  = errors.New("storage write failed")
	ErrStorageReadFailed   = errors.New("storage read failed")
	ErrStorageDeleteFailed = errors.New("storage delete failed")
)
