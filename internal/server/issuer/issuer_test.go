package issuer

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	iss := New(WithClock(func() time.Time { return now }))

	raw, tok, err := iss.Issue("u1", 24*time.Hour)
	require.NoError(t, err)

	assert.Len(t, raw, 64, "256 bits, hex encoded")
	assert.Equal(t, "u1", tok.UserID)
	assert.Empty(t, tok.ID, "ids are assigned by the store")
	assert.Equal(t, cryptox.Digest(raw), tok.HashedToken)
	assert.NotEqual(t, raw, tok.HashedToken)
	assert.True(t, tok.ExpiresAt.Equal(now.Add(24*time.Hour)))
	assert.False(t, tok.Expired(now))
}

func TestIssue_NonPositiveTTL(t *testing.T) {
	iss := New()
	for _, ttl := range []time.Duration{0, -time.Second} {
		_, _, err := iss.Issue("u1", ttl)
		assert.Error(t, err)
	}
}

func TestResolve_MatchesIssuedDigest(t *testing.T) {
	iss := New()

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		raw, tok, err := iss.Issue("u", time.Minute)
		require.NoError(t, err)
		require.Equal(t, tok.HashedToken, iss.Resolve(raw))

		_, dup := seen[tok.HashedToken]
		require.False(t, dup, "digest collision")
		seen[tok.HashedToken] = struct{}{}
	}
	assert.NotEqual(t, iss.Resolve("a"), iss.Resolve("b"))
}
