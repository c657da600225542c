// Package common defines shared constants and sentinel errors used across
// marketauth components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Authentication errors. Unknown identifier and wrong secret are
	// deliberately indistinguishable to the caller.
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Verification delivery errors. Retryable: the issued code stays
	// valid for its full window regardless of dispatch outcome.
	ErrorDeliveryFailed = errors.New("delivery failed")

	// Stored credential material has an unexpected shape. Indicates a
	// storage or codec bug, logged at error severity.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
)
