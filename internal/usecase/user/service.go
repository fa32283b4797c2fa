package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "userauth/backend/internal/domain/auth"
	authusecase "userauth/backend/internal/usecase/auth"
)

// Service provides user management use cases for administrative workflows.
type Service struct {
	repo    domain.UserRepository
	hasher  *authusecase.PasswordHasher
	nowFunc func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository, hasher *authusecase.PasswordHasher) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		nowFunc: time.Now,
	}
}

// CreateInput defines the payload to create a new user.
type CreateInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// BootstrapAdmin describes the administrator seeded at startup.
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// Create persists a new user. The username and the email are checked for
// uniqueness independently; either one being taken is a duplicate.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	const op = "user.Create"

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	role, err := ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		Username:       username,
		Email:          email,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		HashedPassword: hashed,
		Role:           role,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// the store's unique constraints still decide races between concurrent creates
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sanitizeUser(user), nil
}

// EnsureAdmin creates the bootstrap administrator unless its username already exists.
// It reports whether a new account was created.
func (s *Service) EnsureAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	const op = "user.EnsureAdmin"

	if strings.TrimSpace(admin.Username) == "" {
		return false, nil
	}

	if _, err := s.repo.GetByUsername(ctx, strings.TrimSpace(admin.Username)); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.Create(ctx, CreateInput{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		Role:     string(domain.RoleAdmin),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	const op = "user.ensureAvailable"

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return domain.ErrDuplicateUser
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateUser
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ParseRole normalizes a role name, defaulting to RoleUser when empty.
func ParseRole(raw string) (domain.UserRole, error) {
	role := domain.UserRole(strings.TrimSpace(strings.ToLower(raw)))
	switch role {
	case "":
		return domain.RoleUser, nil
	case domain.RoleUser, domain.RoleAdmin:
		return role, nil
	default:
		return "", domain.ErrInvalidRole
	}
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.HashedPassword = ""
	return &copy
}
