// Package tokens declares the storage contract shared by the three
// single-use token tables (refresh, email verification, password reset)
// and provides PostgreSQL and in-memory implementations.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores tokens by digest. The natural key is HashedToken, which
// is unique within one table; raw secrets never reach this layer.
type Repository interface {
	// Create inserts a copy of token, assigning ID when empty, and returns the
	// stored row. A duplicate digest yields common.ErrorAlreadyExists.
	Create(ctx context.Context, token *models.Token) (*models.Token, error)

	// FindByHash looks a token up by its digest, returning
	// common.ErrorNotFound when absent.
	FindByHash(ctx context.Context, hashedToken string) (*models.Token, error)

	// FindByID returns common.ErrorNotFound when absent.
	FindByID(ctx context.Context, id string) (*models.Token, error)

	// Delete removes one token by id. It returns common.ErrorNotFound when no
	// row was removed, so of two concurrent deletes of one token exactly one
	// succeeds.
	Delete(ctx context.Context, id string) error

	// DeleteForUser removes every token owned by userID.
	DeleteForUser(ctx context.Context, userID string) error

	// CountForUser returns how many tokens userID currently holds.
	CountForUser(ctx context.Context, userID string) (int, error)

	// Count returns the number of stored tokens.
	Count(ctx context.Context) (int, error)
}
