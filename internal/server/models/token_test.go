package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToken_Expired(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := &Token{ExpiresAt: exp}

	assert.False(t, tok.Expired(exp.Add(-time.Second)))
	assert.False(t, tok.Expired(exp), "a token is valid at exactly its expiry instant")
	assert.True(t, tok.Expired(exp.Add(time.Nanosecond)))
}
