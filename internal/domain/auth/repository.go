package auth

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for auth users.
//
// Implementations return ErrUserNotFound for missing rows, ErrDuplicateUser when
// a uniqueness constraint rejects a write and wrap every other failure with
// ErrStoreFailure.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string, updatedAt time.Time) error
}
