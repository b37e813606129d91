// Package auth signs and verifies HS256 access tokens and resolves bearer
// credentials presented on incoming requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access-token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"userID"`
	IsAdmin bool   `json:"isAdmin"`
}

// Signer issues and checks access tokens with a shared secret.
type Signer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewSigner(secret []byte, validity time.Duration) *Signer {
	return &Signer{secret: secret, validity: validity, now: time.Now}
}

// Sign returns a signed token for userID valid for the configured lifetime.
func (s *Signer) Sign(userID string, isAdmin bool) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID:  userID,
		IsAdmin: isAdmin,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tokenString, nil
}

// Verify parses tokenString and returns its claims. Expired tokens yield
// common.ErrTokenExpired; anything else wrong yields common.ErrInvalidToken.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
