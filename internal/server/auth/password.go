package auth

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MinBcryptCost is the lowest work factor the hasher will use.
	MinBcryptCost = 10
	// maxPasswordBytes is bcrypt's input limit.
	maxPasswordBytes = 72
)

// PasswordHasher hashes and verifies account passwords with bcrypt.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordHasher clamps cost into [MinBcryptCost, bcrypt.MaxCost].
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", common.Validationf("password is required")
	}
	if len(password) > maxPasswordBytes {
		return "", common.Validationf("password must be at most %d bytes", maxPasswordBytes)
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// only a malformed hash produces an error.
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// CompareDummy spends one bcrypt comparison against a throwaway hash. Login
// calls it for unknown emails so both failure paths take similar time.
func (h *PasswordHasher) CompareDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
