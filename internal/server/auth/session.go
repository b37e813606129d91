package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Authenticator turns a presented Authorization header into verified claims.
type Authenticator struct {
	signer *Signer
}

func NewAuthenticator(signer *Signer) *Authenticator {
	return &Authenticator{signer: signer}
}

// FromHeader expects "Bearer <token>".
func (a *Authenticator) FromHeader(header string) (*Claims, error) {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return nil, common.ErrInvalidToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
	if raw == "" {
		return nil, common.ErrInvalidToken
	}
	return a.signer.Verify(raw)
}

type ctxKey string

const claimsKey ctxKey = "claims"

// WithClaims stores verified claims on ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}
