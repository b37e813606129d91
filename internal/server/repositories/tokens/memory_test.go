package tokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	exp := time.Now().Add(time.Hour)
	tok, err := repo.Create(ctx, &models.Token{UserID: "u1", HashedToken: "d1", ExpiresAt: exp})
	require.NoError(t, err)
	require.NotEmpty(t, tok.ID)

	got, err := repo.FindByHash(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)
	assert.True(t, got.ExpiresAt.Equal(exp))

	got.UserID = "mutated"
	again, err := repo.FindByID(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", again.UserID, "returned values are copies")

	require.NoError(t, repo.Delete(ctx, tok.ID))
	assert.ErrorIs(t, repo.Delete(ctx, tok.ID), common.ErrorNotFound, "second delete finds nothing")

	_, err = repo.FindByHash(ctx, "d1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.FindByID(ctx, tok.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ConcurrentDeleteSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	tok, err := repo.Create(ctx, &models.Token{UserID: "u1", HashedToken: "d1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		deleted atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Delete(ctx, tok.ID) == nil {
				deleted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), deleted.Load())
}

func TestMemoryRepository_DuplicateDigest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Create(ctx, &models.Token{UserID: "u1", HashedToken: "same"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Token{UserID: "u2", HashedToken: "same"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryRepository_PerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, d := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, &models.Token{UserID: "u1", HashedToken: d})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Token{UserID: "u2", HashedToken: "z"})
	require.NoError(t, err)

	n, err := repo.CountForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, repo.DeleteForUser(ctx, "u1"))

	n, _ = repo.CountForUser(ctx, "u1")
	assert.Equal(t, 0, n)
	n, _ = repo.Count(ctx)
	assert.Equal(t, 1, n)

	_, err = repo.FindByHash(ctx, "a")
	assert.ErrorIs(t, err, common.ErrorNotFound, "digest index is cleared with the row")
	_, err = repo.Create(ctx, &models.Token{UserID: "u1", HashedToken: "a"})
	assert.NoError(t, err, "digest can be reused after deletion")
}
