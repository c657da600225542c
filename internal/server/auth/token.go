// Package auth implements the signed identity token issued after login and
// presented on verification requests. Tokens are HS256 JWTs carrying the
// account identifier, the account type, and a fixed time-to-live.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mbortnikov/marketauth/internal/common"
)

// Claims extends the registered JWT claims with the account-type tag.
// The subject claim carries the account identifier.
type Claims struct {
	jwt.RegisteredClaims
	AccountType string `json:"acct"`
}

// Identity is the decoded result of a successfully verified token.
type Identity struct {
	Subject     string
	AccountType string
}

// Codec issues and verifies identity tokens with a process-wide signing key
// and a fixed TTL, both injected at construction and immutable afterwards.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec from the signing key and token TTL.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// Issue returns an encoded token for the subject with issued-at = now and
// expiry = now + TTL, signed over all fields.
func (c *Codec) Issue(subject, accountType string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		AccountType: accountType,
	})

	return token.SignedString(c.secret)
}

// Verify decodes encoded, checks the signature, and validates expiry against
// now. Malformed input or a signature mismatch yields ErrInvalidToken; an
// elapsed expiry yields ErrTokenExpired. Expiry is exclusive: a token is
// rejected from the exact expiry instant onwards.
func (c *Codec) Verify(encoded string, now time.Time) (*Identity, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(encoded, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		// A tampered token can fail both signature and expiry checks;
		// signature mismatch takes precedence.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, common.ErrInvalidToken
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return &Identity{Subject: claims.Subject, AccountType: claims.AccountType}, nil
}
