package auth

import (
	"time"

	domain "userauth/backend/internal/domain/auth"
)

// TokenManager abstracts token issuance and verification.
//
// Verify must enforce expiry itself and report failures as one of
// domain.ErrTokenExpired, domain.ErrTokenMalformed or domain.ErrMissingClaims.
type TokenManager interface {
	Issue(username string, userID int64, role domain.UserRole, ttl time.Duration) (string, error)
	Verify(token string) (*domain.Claims, error)
}
