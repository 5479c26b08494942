// Package common defines shared constants and sentinel errors used across
// the deadbox server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Account errors.
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrEmailAlreadyVerified = errors.New("email already verified")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Letter errors.
	ErrLetterLocked     = errors.New("letter can no longer be modified")
	ErrLetterNotSent    = errors.New("letter has not been released")
	ErrInvalidFamilyKey = errors.New("invalid family key")

	// Trigger evaluation errors.
	ErrPassInProgress = errors.New("trigger pass already in progress")
)
