// Package issuer mints single-use tokens: a raw secret for the client and an
// unsaved record holding only its digest.
package issuer

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Issuer builds token records. It never persists them.
type Issuer struct {
	now  func() time.Time
	bits int
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func New(opts ...Option) *Issuer {
	i := &Issuer{now: time.Now, bits: cryptox.SecretBits}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Issue returns a fresh raw secret and a record for userID that expires ttl
// from now. ttl must be positive.
func (i *Issuer) Issue(userID string, ttl time.Duration) (string, *models.Token, error) {
	if ttl <= 0 {
		return "", nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	raw, err := cryptox.GenerateSecret(i.bits)
	if err != nil {
		return "", nil, err
	}

	return raw, &models.Token{
		UserID:      userID,
		HashedToken: i.Resolve(raw),
		ExpiresAt:   i.now().Add(ttl),
	}, nil
}

// Resolve maps a raw secret to the lookup key used by the token repositories.
func (i *Issuer) Resolve(raw string) string {
	return cryptox.Digest(raw)
}
