package models

import "time"

// VerificationCode is the active one-time code for an account. At most one
// row exists per account: regeneration replaces, never extends, the prior
// code.
type VerificationCode struct {
	AccountID string
	Code      int
	Expires   time.Time
	CreatedAt time.Time
}
