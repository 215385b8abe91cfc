// Package auth provides password hashing and HTTP Basic credential checks.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way credential hasher.
type Hasher interface {
	// Hash returns a salted hash of password.
	Hash(password string) (string, error)
	// Compare returns (true, nil) on match, (false, nil) on mismatch and an
	// error when the stored hash cannot be used.
	Compare(password, hash string) (bool, error)
}

// maxPasswordBytes is the longest input bcrypt reads.
const maxPasswordBytes = 72

// BcryptHasher implements Hasher with bcrypt. The salt is generated per hash
// and embedded in the result. Passwords longer than 72 bytes are truncated on
// both Hash and Compare, so only their first 72 bytes count.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside
// bcrypt's range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a bcrypt hash for the provided plaintext.
func (h *BcryptHasher) Hash(password string) (string, error) {
	// GenerateFromPassword draws a fresh random salt for every call
	hashed, err := bcrypt.GenerateFromPassword(clip(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

// Compare compares a plaintext password against a bcrypt hash.
func (h *BcryptHasher) Compare(password, hash string) (bool, error) {
	// CompareHashAndPassword is constant-time over the hash bytes
	err := bcrypt.CompareHashAndPassword([]byte(hash), clip(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt compare: %w", err)
	}
}

func clip(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
