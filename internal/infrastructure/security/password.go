package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/plannr/event-planner/internal/core/domain"
)

// maxPasswordBytes is the bcrypt input limit; longer inputs would be
// silently truncated by older bcrypt implementations.
const maxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt. The salt is generated per call
// and embedded in the encoded hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost
// is outside the range bcrypt accepts.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", domain.Invalid("password is required")
	}
	if len(plaintext) > maxPasswordBytes {
		return "", domain.Invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares in constant time. Malformed hashes never match.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
