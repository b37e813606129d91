package repomanager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_TablesAreSeparate(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	_, err := m.RefreshTokens().Create(ctx, &models.Token{UserID: "u1", HashedToken: "same"})
	require.NoError(t, err)
	_, err = m.EmailTokens().Create(ctx, &models.Token{UserID: "u1", HashedToken: "same"})
	require.NoError(t, err, "digest uniqueness is per table")

	n, _ := m.PasswordTokens().Count(ctx)
	assert.Equal(t, 0, n)
}

func TestInMemory_RunInTx_SharesState(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	err := m.RunInTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		_, err := tx.Users().Create(ctx, &models.User{Email: "a@b.com"})
		if err != nil {
			return err
		}
		return tx.RunInTx(ctx, func(ctx context.Context, inner RepositoryManager) error {
			_, err := inner.Users().FindByEmail(ctx, "a@b.com")
			return err
		})
	})
	require.NoError(t, err)

	n, _ := m.Users().Count(ctx)
	assert.Equal(t, 1, n)
}

func TestInMemory_RunInTx_PropagatesError(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	boom := errors.New("boom")

	err := m.RunInTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestInMemory_RunInTx_Serializes(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.RunInTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
				if err := tx.RefreshTokens().DeleteForUser(ctx, "u1"); err != nil {
					return err
				}
				_, err := tx.RefreshTokens().Create(ctx, &models.Token{UserID: "u1", HashedToken: uuid.NewString()})
				return err
			})
		}()
	}
	wg.Wait()

	n, err := m.RefreshTokens().CountForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "delete-then-create units never interleave")
}

func TestNew_SelectsBackend(t *testing.T) {
	m, err := New(context.Background(), &config.Config{StoreBackend: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryRepositoryManager{}, m)
	assert.NoError(t, m.Close())

	_, err = New(context.Background(), &config.Config{StoreBackend: "cassandra"})
	assert.Error(t, err)
}
