package auth

import (
	"errors"
	"fmt"

	domain "userauth/backend/internal/domain/auth"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and checks passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

// NewPasswordHasher validates the cost factor and prepares the hasher.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	const op = "auth.NewPasswordHasher"

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%s: bcrypt cost %d outside [%d, %d]", op, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// compared against when the username is unknown, so both failure paths pay one bcrypt round
	dummy, err := bcrypt.GenerateFromPassword([]byte("unused-password-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

// Hash returns the bcrypt digest of the plaintext password.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ErrPasswordTooLong
		}
		return "", fmt.Errorf("auth.Hash: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether plaintext matches the stored digest.
func (h *PasswordHasher) Compare(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

func (h *PasswordHasher) burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}

// Cost returns the configured work factor.
func (h *PasswordHasher) Cost() int {
	return h.cost
}
