// Package passhash implements server-side password hashing and verification.
package passhash

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost takes roughly 100ms per hash on commodity hardware.
const DefaultCost = bcrypt.DefaultCost

// maxInputLen is the longest input bcrypt accepts.
const maxInputLen = 72

// Hasher hashes passwords with a salted, cost-tuned bcrypt.
type Hasher struct {
	cost  int
	dummy []byte
}

// New returns a Hasher; out-of-range costs fall back to DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	// Hash of a random-looking constant, compared against when the account
	// does not exist so both login paths cost one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("tasktracker-timing-equalizer"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(input(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash. Malformed hashes never match.
func (h *Hasher) Compare(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), input(password))
	return err == nil
}

// CompareMissing spends the time of one Compare for an account that does not
// exist. It always reports false.
func (h *Hasher) CompareMissing(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, input(password))
	return false
}

// input is what bcrypt sees. Passwords longer than bcrypt's 72-byte limit are
// replaced by their base64 SHA-256 digest, so every byte still counts.
func input(password string) []byte {
	if len(password) <= maxInputLen {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
