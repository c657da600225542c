// Package models contains the server-side data model.
package models

import "time"

// AccountType tags an account with its marketplace role.
type AccountType string

const (
	AccountTypeBuyer  AccountType = "BUYER"
	AccountTypeSeller AccountType = "SELLER"
)

// Account is a registered user of the marketplace. Email is immutable once
// created; Digest and Salt are always written together and never updated
// individually. The plaintext secret is never stored.
type Account struct {
	ID          string
	Email       string
	Digest      []byte
	Salt        []byte
	Phone       string
	AccountType AccountType
	CreatedAt   time.Time
}
