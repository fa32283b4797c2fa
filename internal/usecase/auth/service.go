package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "userauth/backend/internal/domain/auth"
)

// DefaultTokenTTL is the validity window of issued access tokens.
const DefaultTokenTTL = 60 * time.Minute

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users    domain.UserRepository
	tokens   TokenManager
	hasher   *PasswordHasher
	tokenTTL time.Duration
	nowFunc  func() time.Time
}

// NewService constructs an auth service. A non-positive ttl falls back to DefaultTokenTTL.
func NewService(users domain.UserRepository, tokens TokenManager, hasher *PasswordHasher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		tokenTTL: ttl,
		nowFunc:  time.Now,
	}
}

// VerifyCredentials checks a username/password pair against the stored hash.
// Unknown users, wrong passwords and inactive accounts all yield
// domain.ErrInvalidCredentials.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	const op = "auth.VerifyCredentials"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.hasher.burn(password)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.burn(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Compare(user.HashedPassword, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// Login validates credentials and returns a bearer token plus the sanitized user.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	const op = "auth.Login"

	user, err := s.VerifyCredentials(ctx, creds.Username, creds.Password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Username, user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, sanitizeUser(user), nil
}

// Authenticate verifies a bearer token and returns its claims. It never touches the store.
func (s *Service) Authenticate(_ context.Context, token string) (*domain.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenMalformed
	}
	return s.tokens.Verify(token)
}

// Authorize enforces the role gate on already verified claims.
func (s *Service) Authorize(claims *domain.Claims, required domain.UserRole) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	if required != "" && !claims.HasRole(required) {
		return domain.ErrUnauthorized
	}
	return nil
}

// CurrentUser loads the caller's own record.
func (s *Service) CurrentUser(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	const op = "auth.CurrentUser"

	if claims == nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sanitizeUser(user), nil
}

// ChangePassword replaces the stored hash after verifying the current password.
// On any failure the stored hash is left unchanged.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	const op = "auth.ChangePassword"

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Compare(user.HashedPassword, currentPassword) {
		return domain.ErrPasswordMismatch
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashed, s.nowFunc().UTC()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.HashedPassword = ""
	return &copy
}
