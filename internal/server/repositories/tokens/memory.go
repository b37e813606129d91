package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps one token table in process memory, enforcing the
// same digest uniqueness as the Postgres schema.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.Token
	byHash map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*models.Token),
		byHash: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHash[token.HashedToken]; exists {
		return nil, common.ErrorAlreadyExists
	}
	stored := *token
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := r.byID[stored.ID]; exists {
		return nil, common.ErrorAlreadyExists
	}
	stored.CreatedAt = time.Now()

	r.byID[stored.ID] = &stored
	r.byHash[stored.HashedToken] = stored.ID
	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByHash(ctx context.Context, hashedToken string) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[hashedToken]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t := *r.byID[id]
	return &t, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t := *stored
	return &t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byHash, t.HashedToken)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) DeleteForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.byID {
		if t.UserID == userID {
			delete(r.byHash, t.HashedToken)
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *MemoryRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, t := range r.byID {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
