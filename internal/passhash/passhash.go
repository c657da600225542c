// Package passhash implements secret hashing for stored account credentials.
// Digests are produced with argon2id over an explicit per-account salt, so
// the digest and salt are stored as separate columns and always written
// together.
package passhash

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/mbortnikov/marketauth/internal/common"
)

// argon2id parameters (OWASP-recommended).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4

	// SaltLength is the fixed length of a generated salt in bytes.
	SaltLength = 16

	// DigestLength is the fixed length of a computed digest in bytes.
	DigestLength = 32
)

// GenerateSalt produces a cryptographically random salt of SaltLength bytes.
// It fails only if the entropy source is unavailable.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Hash computes the argon2id digest of plaintext under salt. The same
// (plaintext, salt) pair always yields the same digest.
func Hash(plaintext, salt []byte) []byte {
	return argon2.IDKey(plaintext, salt, argonTime, argonMemory, argonThreads, DigestLength)
}

// Verify recomputes the digest for plaintext under storedSalt and compares
// it against storedDigest in constant time. Stored material of unexpected
// length indicates corruption and yields ErrInvalidCredentialFormat.
func Verify(plaintext, storedDigest, storedSalt []byte) (bool, error) {
	if len(storedDigest) != DigestLength || len(storedSalt) != SaltLength {
		return false, common.ErrInvalidCredentialFormat
	}
	computed := Hash(plaintext, storedSalt)
	return subtle.ConstantTimeCompare(computed, storedDigest) == 1, nil
}
