// Package users declares the user side of the credential store and provides
// its PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists user accounts. Email is unique and compared exactly
// as stored.
type Repository interface {
	// Create inserts user, assigning ID when empty. A duplicate email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail returns common.ErrorNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns common.ErrorNotFound when no user has that id.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// SetEmailVerified flips the verification flag. Unknown ids yield
	// common.ErrorNotFound.
	SetEmailVerified(ctx context.Context, id string, verified bool) error

	// SetPasswordHash replaces the stored password digest. Unknown ids yield
	// common.ErrorNotFound.
	SetPasswordHash(ctx context.Context, id string, passwordHash string) error

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}
