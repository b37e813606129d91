package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_FromHeader(t *testing.T) {
	signer := NewSigner([]byte("k"), time.Hour)
	a := NewAuthenticator(signer)

	tok, err := signer.Sign("u1", false)
	require.NoError(t, err)

	claims, err := a.FromHeader("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	for _, h := range []string{"", tok, "Basic " + tok, "Bearer ", "Bearer garbage"} {
		_, err := a.FromHeader(h)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "header %q", h)
	}
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: "u1"})
	c, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", c.UserID)
}
