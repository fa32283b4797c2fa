package token

import (
	"errors"
	"fmt"
	"time"

	domain "userauth/backend/internal/domain/auth"
	usecase "userauth/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidConfig is returned when the signing secret or algorithm is unusable.
var ErrInvalidConfig = errors.New("invalid token signing configuration")

// JWTManager issues and validates JWT tokens.
type JWTManager struct {
	secret  []byte
	method  jwt.SigningMethod
	nowFunc func() time.Time
}

// NewJWTManager constructs a manager with the provided secret and HMAC algorithm
// name (HS256, HS384 or HS512).
func NewJWTManager(secret, algorithm string) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidConfig)
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidConfig, algorithm)
	}
	return &JWTManager{
		secret:  []byte(secret),
		method:  method,
		nowFunc: time.Now,
	}, nil
}

// Ensure JWTManager implements the TokenManager interface.
var _ usecase.TokenManager = (*JWTManager)(nil)

// Claims represents token claims.
type Claims struct {
	UserID *int64 `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a signed JWT carrying the username as subject plus id and role.
func (m *JWTManager) Issue(username string, userID int64, role domain.UserRole, ttl time.Duration) (string, error) {
	now := m.nowFunc().UTC()
	claims := Claims{
		UserID: &userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates the token, expiry included, returning its claims.
func (m *JWTManager) Verify(tokenString string) (*domain.Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}

	if claims.Subject == "" || claims.UserID == nil {
		return nil, domain.ErrMissingClaims
	}

	return &domain.Claims{
		Username:  claims.Subject,
		UserID:    *claims.UserID,
		Role:      domain.UserRole(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
