// Package password wraps bcrypt hashing and verification for account
// credentials. Inputs longer than bcrypt's 72-byte limit are truncated rather
// than rejected, consistently on both the hash and verify paths.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxSecretBytes is bcrypt's input limit. Bytes beyond it are ignored.
const MaxSecretBytes = 72

var (
	ErrMismatch        = errors.New("password does not match")
	ErrMalformedDigest = errors.New("malformed password digest")
)

// Hash derives a salted bcrypt digest from the given secret. Hashing the same
// secret twice yields different digests.
func Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncate(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares a secret against a stored digest. It returns ErrMismatch on
// a wrong password and ErrMalformedDigest when the stored digest cannot be
// parsed; callers must treat both the same way in user-facing responses.
func Verify(secret, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), truncate(secret))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return ErrMalformedDigest
}

func truncate(secret string) []byte {
	b := []byte(secret)
	if len(b) > MaxSecretBytes {
		b = b[:MaxSecretBytes]
	}
	return b
}
