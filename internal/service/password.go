package service

import (
	"errors"
	"sync"

	"github.com/minasenanami/wonderful-editor/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type bcryptHasher struct {
	cost int

	dummyOnce   sync.Once
	dummyDigest []byte
}

// NewBcryptHasher returns a bcrypt hasher. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", models.NewFieldError("password", "Password is too long")
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(digest), nil
}

// Verify compares in constant time. An empty digest still pays for one bcrypt
// comparison so unknown accounts take as long as known ones.
func (h *bcryptHasher) Verify(password, digest string) bool {
	if digest == "" {
		h.dummyOnce.Do(func() {
			h.dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.cost)
		})
		_ = bcrypt.CompareHashAndPassword(h.dummyDigest, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
