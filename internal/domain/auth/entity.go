package auth

import (
	"errors"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidCredentials indicates a login failure. Unknown users and wrong
	// passwords both map to it.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired means the token was well formed but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers undecodable tokens, bad signatures and algorithm mismatches.
	ErrTokenMalformed = errors.New("token malformed or signature invalid")
	// ErrMissingClaims means a verified token lacks the subject or id claim.
	ErrMissingClaims = errors.New("token missing required claims")
	// ErrUnauthorized is the uniform rejection for unauthenticated or under-privileged callers.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicateUser signals that the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrStoreFailure wraps I/O failures of the user store.
	ErrStoreFailure = errors.New("user store failure")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the provided role is not supported.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPasswordMismatch indicates the current password is incorrect.
	ErrPasswordMismatch = errors.New("current password does not match")
	// ErrPasswordTooShort rejects passwords under MinPasswordLength characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong rejects passwords over MaxPasswordBytes, the most bcrypt accepts.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrUsernameRequired and ErrEmailRequired reject blank registration fields.
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
)

const (
	// MinPasswordLength is the shortest password, in characters, accepted at
	// registration and password change.
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
)

// ValidatePassword applies the password length policy to a new password.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// UserRole identifies the privileges assigned to a user.
type UserRole string

const (
	// RoleUser represents a standard application user.
	RoleUser UserRole = "user"
	// RoleAdmin represents an administrative user.
	RoleAdmin UserRole = "admin"
)

// User models the authentication entity persisted in storage.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Username string
	Password string
}

// Claims is the identity carried by a verified bearer token.
type Claims struct {
	Username  string
	UserID    int64
	Role      UserRole
	ExpiresAt time.Time
}

// HasRole reports whether the claims grant the given role.
func (c *Claims) HasRole(role UserRole) bool {
	return c != nil && c.Role == role
}
