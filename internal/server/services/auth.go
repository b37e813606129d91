// Package services holds the server's business logic. AuthService owns the
// credential and session lifecycle: registration, login, refresh-token
// rotation, email verification and password recovery.
package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/issuer"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/tokens"
	validation "github.com/go-ozzo/ozzo-validation"
)

// PasswordHasher hashes and checks login passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, digest string) (bool, error)
}

// AccessTokenSigner signs access-token payloads.
type AccessTokenSigner interface {
	Sign(userID string, isAdmin bool) (string, error)
}

// Options are the values AuthService reads from configuration.
type Options struct {
	RefreshTokenTTL    time.Duration
	EmailTokenTTL      time.Duration
	PasswordTokenTTL   time.Duration
	APIURL             string
	FrontendURL        string
	MinPasswordEntropy float64
}

// OptionsFromConfig copies the service settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RefreshTokenTTL:    cfg.RefreshTokenValidityDuration,
		EmailTokenTTL:      cfg.EmailTokenValidityDuration,
		PasswordTokenTTL:   cfg.PasswordTokenValidityDuration,
		APIURL:             cfg.APIURL,
		FrontendURL:        cfg.FrontendURL,
		MinPasswordEntropy: cfg.MinPasswordEntropy,
	}
}

// UserView is the public projection of a user.
type UserView struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

func newUserView(u *models.User) UserView {
	return UserView{ID: u.ID, FullName: u.FullName, Email: u.Email, IsAdmin: u.IsAdmin}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// TokenPair is returned by a successful RefreshAccessToken.
type TokenPair struct {
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken"`
}

// AuthService implements the auth operations. It keeps no per-request state.
type AuthService struct {
	repos  repomanager.RepositoryManager
	issuer *issuer.Issuer
	hasher PasswordHasher
	signer AccessTokenSigner
	sender notifications.Sender
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

func NewAuthService(
	repos repomanager.RepositoryManager,
	iss *issuer.Issuer,
	hasher PasswordHasher,
	signer AccessTokenSigner,
	sender notifications.Sender,
	opts Options,
	logger logging.Logger,
) *AuthService {
	return &AuthService{
		repos:  repos,
		issuer: iss,
		hasher: hasher,
		signer: signer,
		sender: sender,
		opts:   opts,
		logger: logger.With("module", "auth"),
		now:    time.Now,
	}
}

// Register creates an unverified account and sends a verification email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if err := in.Validate(); err != nil {
		return validationError(err)
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.checkStrength(in.Password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return err
	}

	user, err := s.repos.Users().Create(ctx, &models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return ErrEmailAlreadyExists
		}
		return storageError("create user", err)
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	return s.sendVerification(ctx, user)
}

// Login checks credentials and opens a new session, ending all earlier ones.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	user, err := s.repos.Users().FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidEmailOrPassword
		}
		return nil, storageError("find user", err)
	}
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	ok, err := s.hasher.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidEmailOrPassword
	}

	var raw string
	err = s.runInTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.RefreshTokens().DeleteForUser(ctx, user.ID); err != nil {
			return storageError("delete refresh tokens", err)
		}
		var err error
		raw, err = s.issueAndStore(ctx, m.RefreshTokens(), user.ID, s.opts.RefreshTokenTTL)
		return err
	})
	if err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: newUserView(user), AccessToken: access, RefreshToken: raw}, nil
}

// RefreshAccessToken rotates a refresh token. The presented token is deleted
// before its expiry is checked, and only the caller whose delete removed the
// row may continue, so a secret is never used twice. Other sessions of the
// same user are left alone.
func (s *AuthService) RefreshAccessToken(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	if err := validateToken(rawRefresh); err != nil {
		return nil, validationError(err)
	}

	repo := s.repos.RefreshTokens()
	token, err := repo.FindByHash(ctx, s.issuer.Resolve(rawRefresh))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrRefreshTokenOrUserNotFound
		}
		return nil, storageError("find refresh token", err)
	}

	if err := repo.Delete(ctx, token.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrRefreshTokenOrUserNotFound
		}
		return nil, storageError("delete refresh token", err)
	}
	if token.Expired(s.now()) {
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.repos.Users().FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrRefreshTokenOrUserNotFound
		}
		return nil, storageError("find user", err)
	}

	raw, err := s.issueAndStore(ctx, repo, user.ID, s.opts.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	access, err := s.signer.Sign(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &TokenPair{RefreshToken: raw, AccessToken: access}, nil
}

// RequestEmailVerification re-sends the verification email. Unknown and
// already verified addresses succeed without sending anything.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return validationError(err)
	}

	user, err := s.repos.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return storageError("find user", err)
	}
	if user.IsEmailVerified {
		return nil
	}
	return s.sendVerification(ctx, user)
}

// VerifyEmail consumes an email-verification token and marks its owner
// verified. Expired tokens are rejected and left in place.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	if err := validateToken(rawToken); err != nil {
		return validationError(err)
	}

	repo := s.repos.EmailTokens()
	token, err := repo.FindByHash(ctx, s.issuer.Resolve(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrEmailTokenNotFound
		}
		return storageError("find email token", err)
	}
	if token.Expired(s.now()) {
		return ErrEmailTokenExpired
	}

	err = s.runInTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.EmailTokens().Delete(ctx, token.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrEmailTokenNotFound
			}
			return storageError("delete email token", err)
		}
		if err := m.Users().SetEmailVerified(ctx, token.UserID, true); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrUserNotFound
			}
			return storageError("update user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "email verified", "user_id", token.UserID)
	return nil
}

// RequestPasswordReset always succeeds. A reset link is sent only when the
// address belongs to a user; earlier reset tokens stay valid.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return validationError(err)
	}

	user, err := s.repos.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return storageError("find user", err)
	}

	raw, err := s.issueAndStore(ctx, s.repos.PasswordTokens(), user.ID, s.opts.PasswordTokenTTL)
	if err != nil {
		return err
	}

	s.notify(ctx, notifications.Intent{
		Recipient: user.Email,
		Template:  notifications.TemplateResetPassword,
		Params:    map[string]string{"reset_url": withToken(s.opts.FrontendURL+"/auth/reset-password", raw)},
	})
	return nil
}

// VerifyResetToken checks a reset token without consuming it. An expired
// token is deleted.
func (s *AuthService) VerifyResetToken(ctx context.Context, rawToken string) error {
	if err := validateToken(rawToken); err != nil {
		return validationError(err)
	}
	_, err := s.findLivePasswordToken(ctx, rawToken)
	return err
}

// RecoverAccount consumes a reset token, sets the new password and revokes
// every other outstanding reset token of that user.
func (s *AuthService) RecoverAccount(ctx context.Context, in RecoverInput) error {
	if err := in.Validate(); err != nil {
		return validationError(err)
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.checkStrength(in.Password); err != nil {
		return err
	}

	token, err := s.findLivePasswordToken(ctx, in.Token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.PasswordTokens().Delete(ctx, token.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrInvalidPasswordToken
			}
			return storageError("delete password token", err)
		}
		if err := m.Users().SetPasswordHash(ctx, token.UserID, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrUserNotFound
			}
			return storageError("update user", err)
		}
		if err := m.PasswordTokens().DeleteForUser(ctx, token.UserID); err != nil {
			return storageError("delete password tokens", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password recovered", "user_id", token.UserID)
	return nil
}

// GetCurrentUser returns the user an access token was issued to.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*UserView, error) {
	user, err := s.repos.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find user", err)
	}
	v := newUserView(user)
	return &v, nil
}

// --- helpers below ---

// runInTx classifies failures of the unit of work itself (begin, commit) as
// storage errors.
func (s *AuthService) runInTx(ctx context.Context, fn func(ctx context.Context, m repomanager.RepositoryManager) error) error {
	err := s.repos.RunInTx(ctx, fn)
	var authErr *AuthError
	if err == nil || errors.As(err, &authErr) || errors.Is(err, ErrStorage) {
		return err
	}
	return storageError("transaction", err)
}

func (s *AuthService) findLivePasswordToken(ctx context.Context, raw string) (*models.Token, error) {
	repo := s.repos.PasswordTokens()
	token, err := repo.FindByHash(ctx, s.issuer.Resolve(raw))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidPasswordToken
		}
		return nil, storageError("find password token", err)
	}
	if token.Expired(s.now()) {
		if err := repo.Delete(ctx, token.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, storageError("delete password token", err)
		}
		return nil, ErrPasswordTokenExpired
	}
	return token, nil
}

func (s *AuthService) issueAndStore(ctx context.Context, repo tokens.Repository, userID string, ttl time.Duration) (string, error) {
	raw, token, err := s.issuer.Issue(userID, ttl)
	if err != nil {
		return "", err
	}
	if _, err := repo.Create(ctx, token); err != nil {
		return "", storageError("create token", err)
	}
	return raw, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	raw, err := s.issueAndStore(ctx, s.repos.EmailTokens(), user.ID, s.opts.EmailTokenTTL)
	if err != nil {
		return err
	}

	s.notify(ctx, notifications.Intent{
		Recipient: user.Email,
		Template:  notifications.TemplateEmailVerification,
		Params:    map[string]string{"verify_url": withToken(s.opts.APIURL+"/auth/email-verification", raw)},
	})
	return nil
}

// notify never fails the calling operation.
func (s *AuthService) notify(ctx context.Context, intent notifications.Intent) {
	if err := s.sender.Send(ctx, intent); err != nil {
		s.logger.Warn(ctx, "notification not sent", "template", intent.Template, "error", err)
	}
}

func (s *AuthService) checkStrength(password string) error {
	err := validation.Errors{"password": validation.Validate(password, passwordStrength(s.opts.MinPasswordEntropy))}.Filter()
	if err != nil {
		return validationError(err)
	}
	return nil
}

func withToken(base, raw string) string {
	return base + "?token=" + url.QueryEscape(raw)
}
