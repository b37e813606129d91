package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps every table in process memory. RunInTx
// serializes units of work but does not roll back partial writes.
type InMemoryRepositoryManager struct {
	txMu *sync.Mutex
	inTx bool

	users          *users.MemoryRepository
	refreshTokens  *tokens.MemoryRepository
	emailTokens    *tokens.MemoryRepository
	passwordTokens *tokens.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		txMu:           &sync.Mutex{},
		users:          users.NewMemoryRepository(),
		refreshTokens:  tokens.NewMemoryRepository(),
		emailTokens:    tokens.NewMemoryRepository(),
		passwordTokens: tokens.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository           { return m.users }
func (m *InMemoryRepositoryManager) RefreshTokens() tokens.Repository  { return m.refreshTokens }
func (m *InMemoryRepositoryManager) EmailTokens() tokens.Repository    { return m.emailTokens }
func (m *InMemoryRepositoryManager) PasswordTokens() tokens.Repository { return m.passwordTokens }

func (m *InMemoryRepositoryManager) RunInTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	view := *m
	view.inTx = true
	return fn(ctx, &view)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
