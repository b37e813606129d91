package services

import (
	"errors"
	"fmt"
)

// Kind classifies an AuthError.
type Kind string

const (
	KindValidation                 Kind = "Validation"
	KindPasswordMismatch           Kind = "PasswordMismatch"
	KindEmailAlreadyExists         Kind = "EmailAlreadyExists"
	KindInvalidEmailOrPassword     Kind = "InvalidEmailOrPassword"
	KindEmailNotVerified           Kind = "EmailNotVerified"
	KindRefreshTokenOrUserNotFound Kind = "RefreshTokenOrUserNotFound"
	KindRefreshTokenExpired        Kind = "RefreshTokenExpired"
	KindUserNotFound               Kind = "UserNotFound"
	KindEmailTokenNotFound         Kind = "EmailTokenNotFound"
	KindEmailTokenExpired          Kind = "EmailTokenExpired"
	KindInvalidPasswordToken       Kind = "InvalidPasswordToken"
	KindPasswordTokenExpired       Kind = "PasswordTokenExpired"
)

// AuthError is an expected failure of an auth operation, safe to show to the
// caller. Two AuthErrors match under errors.Is when their kinds are equal.
type AuthError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *AuthError) Error() string { return e.Reason }

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation                 = &AuthError{Kind: KindValidation, Reason: "Invalid request"}
	ErrPasswordMismatch           = &AuthError{Kind: KindPasswordMismatch, Reason: "Passwords did not match"}
	ErrEmailAlreadyExists         = &AuthError{Kind: KindEmailAlreadyExists, Reason: "A user with that email already exists"}
	ErrInvalidEmailOrPassword     = &AuthError{Kind: KindInvalidEmailOrPassword, Reason: "Invalid email or password"}
	ErrEmailNotVerified           = &AuthError{Kind: KindEmailNotVerified, Reason: "Email is not verified"}
	ErrRefreshTokenOrUserNotFound = &AuthError{Kind: KindRefreshTokenOrUserNotFound, Reason: "Refresh token or user not found"}
	ErrRefreshTokenExpired        = &AuthError{Kind: KindRefreshTokenExpired, Reason: "Refresh token has expired"}
	ErrUserNotFound               = &AuthError{Kind: KindUserNotFound, Reason: "User not found"}
	ErrEmailTokenNotFound         = &AuthError{Kind: KindEmailTokenNotFound, Reason: "Email token not found"}
	ErrEmailTokenExpired          = &AuthError{Kind: KindEmailTokenExpired, Reason: "Email token has expired"}
	ErrInvalidPasswordToken       = &AuthError{Kind: KindInvalidPasswordToken, Reason: "Invalid reset password token"}
	ErrPasswordTokenExpired       = &AuthError{Kind: KindPasswordTokenExpired, Reason: "Reset password token has expired"}
)

// ErrStorage marks unexpected failures of the credential store. The cause
// stays reachable through errors.Is / errors.As.
var ErrStorage = errors.New("storage failure")

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func validationError(err error) error {
	return &AuthError{Kind: KindValidation, Reason: err.Error(), Err: err}
}
