// Package admin holds the one-off operations behind the nexicart CLI:
// bootstrapping the first administrator and loading demo products.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Amit9DeV/NexiCart-sub001/internal/auth"
	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

var (
	ErrInvalidEmail = errors.New("email address is invalid")
	ErrAdminExists  = errors.New("an admin with this email already exists")
	ErrUserExists   = errors.New("a non-admin user with this email already exists")
)

const DefaultAdminName = "Admin"

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the input without touching the database.
func (in CreateAdminInput) Validate() error {
	if !domain.ValidEmail(domain.NormalizeEmail(in.Email)) {
		return ErrInvalidEmail
	}
	return auth.ValidatePassword(in.Password)
}

// CreateAdmin inserts a new administrator. It refuses to touch an existing
// account with the same email, admin or not.
func CreateAdmin(ctx context.Context, users UserStore, in CreateAdminInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsAdmin():
		return nil, ErrAdminExists
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("look up %s: %w", email, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultAdminName
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost a race with another insert.
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}
