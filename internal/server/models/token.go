package models

import "time"

// TokenKind names the three single-use token tables.
type TokenKind string

const (
	TokenKindRefresh       TokenKind = "refresh"
	TokenKindEmail         TokenKind = "email_verification"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// Token is a stored refresh, email-verification or password-reset token.
// HashedToken is the digest of the raw secret handed to the client; the raw
// secret itself is never stored.
type Token struct {
	ID          string
	UserID      string
	HashedToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the token is past its expiry at now. A token is
// still valid at exactly ExpiresAt.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
