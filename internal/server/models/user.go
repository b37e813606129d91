// Package models defines the records persisted by the credential store.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt digest, never the
// raw password.
type User struct {
	ID              string
	FullName        string
	Email           string
	PasswordHash    string
	IsEmailVerified bool
	IsAdmin         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
