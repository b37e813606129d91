// Package password hashes and verifies login passwords with bcrypt. The work
// is CPU-bound, so every call acquires a slot on a bounded pool before it
// runs; callers blocked on a slot give up when their context ends.
package password

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Hasher hashes passwords on at most `workers` goroutines at a time.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher returns a Hasher with the given bcrypt cost and pool size. Values
// out of range fall back to bcrypt.DefaultCost and runtime.NumCPU().
func NewHasher(cost, workers int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash returns the bcrypt digest of plain.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plain matches digest. A mismatch or a malformed
// digest is (false, nil); only context cancellation returns an error.
func (h *Hasher) Verify(ctx context.Context, plain, digest string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil, nil
}
