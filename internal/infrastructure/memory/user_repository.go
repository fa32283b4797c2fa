// Package memory provides an in-process user store with the same uniqueness
// guarantees as the PostgreSQL schema. It backs STORE_DRIVER=memory and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domain "userauth/backend/internal/domain/auth"
)

// UserRepository keeps users in maps guarded by a RWMutex.
type UserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]*domain.User
	byUsername map[string]int64
	byEmail    map[string]int64
}

// NewUserRepository returns an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
	}
}

var _ domain.UserRepository = (*UserRepository)(nil)

// Create inserts the user, assigning the next id. Username and email must both be free.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byUsername[user.Username]; taken {
		return domain.ErrDuplicateUser
	}
	if _, taken := r.byEmail[email]; taken {
		return domain.ErrDuplicateUser
	}

	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = stored.ID
	r.byEmail[email] = stored.ID
	return nil
}

// GetByUsername fetches a user by username.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.clone(id)
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.clone(id)
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.clone(id)
}

// UpdatePassword replaces the stored hash of the given user.
func (r *UserRepository) UpdatePassword(_ context.Context, id int64, hashedPassword string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.HashedPassword = hashedPassword
	u.UpdatedAt = updatedAt
	return nil
}

// callers hold the lock
func (r *UserRepository) clone(id int64) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}
