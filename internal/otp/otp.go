// Package otp generates short-lived numeric verification codes delivered
// out-of-band to confirm control of a contact channel.
package otp

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Codes are 5-6 digit numbers in [codeMin, codeMin+codeSpan).
const (
	codeMin  = 10000
	codeSpan = 900000
)

// DefaultWindow is the default validity window for a generated code.
const DefaultWindow = 30 * time.Minute

// Code is a numeric one-time code bound to an expiry instant.
type Code struct {
	Value   int
	Expires time.Time
}

// Generate draws a code from crypto/rand and binds it to expiry = now + window.
func Generate(now time.Time, window time.Duration) (*Code, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return nil, err
	}
	return &Code{
		Value:   codeMin + int(n.Int64()),
		Expires: now.Add(window),
	}, nil
}

// IsValid reports whether the code is still usable at now. The boundary is
// exclusive: a code is invalid from its exact expiry instant onwards.
func IsValid(c *Code, now time.Time) bool {
	return now.Before(c.Expires)
}
