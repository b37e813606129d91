// Package repomanager vends the credential-store repositories and scopes them
// to a unit of work. Two backends exist: PostgreSQL and in-process memory,
// chosen at startup by configuration.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// RepositoryManager is the credential store seen by the services layer.
type RepositoryManager interface {
	Users() users.Repository
	RefreshTokens() tokens.Repository
	EmailTokens() tokens.Repository
	PasswordTokens() tokens.Repository

	// RunInTx runs fn against a manager whose repositories share one unit of
	// work. On Postgres this is a database transaction; the memory backend
	// only serializes such units. Calling RunInTx on the manager passed to fn
	// reuses the outer unit.
	RunInTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error

	Close() error
}

// New builds the manager selected by cfg.StoreBackend. The Postgres backend
// connects and applies migrations before returning.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case config.StoreMemory:
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
