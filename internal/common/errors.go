// Package common defines shared constants and sentinel errors used across
// the ledger, its transport and its clients. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStorageFailure marks a transaction that could not commit. No partial
	// state is left behind and the operation is safe to retry.
	ErrStorageFailure = errors.New("storage failure")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Plate lifecycle errors.
	ErrOwnPlate = errors.New("own plates leave the fleet only through roster reconciliation")

	// Validation errors.
	ErrInvalidPlate  = errors.New("invalid plate format")
	ErrInvalidPage   = errors.New("page must be positive")
	ErrInvalidRoster = errors.New("roster contains invalid rows")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
