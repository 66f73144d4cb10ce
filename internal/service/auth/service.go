// Package auth orchestrates the account lifecycle: registration with email
// confirmation, login, session token refresh and password reset.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/iguajardo/serenity-api/internal/domain"
	"github.com/iguajardo/serenity-api/internal/mail"
	"github.com/iguajardo/serenity-api/internal/repository"
	"github.com/iguajardo/serenity-api/pkg/config"
	"github.com/iguajardo/serenity-api/pkg/crypto"
	"github.com/iguajardo/serenity-api/pkg/token"
)

var (
	ErrInvalidInput     = errors.New("username, email and password are required")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already in use")
	ErrBadCredentials   = errors.New("bad username or password")
	ErrEmailNotVerified = errors.New("email not verified, please check your mail inbox to validate it")
	ErrUserNotFound     = errors.New("user not found")
)

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	codec  *token.Codec
	mailer mail.Mailer
	logger *slog.Logger
	cfg    config.Config
}

// New constructs a Service.
func New(users repository.UserRepository, codec *token.Codec, mailer mail.Mailer, logger *slog.Logger, cfg config.Config) Service {
	return Service{users: users, codec: codec, mailer: mailer, logger: logger, cfg: cfg}
}

// RegisterInput carries registration attributes. Avatar is optional.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Avatar   string
}

// RegisterResult is the outcome of a successful registration. MailSent is
// false when the account was created but the confirmation mail could not be
// delivered; the account and its pending confirmation token stay valid.
type RegisterResult struct {
	User     *domain.User
	MailSent bool
}

// Register creates a user with its profile, then mails a confirmation link.
// The new account starts unconfirmed and cannot log in until the link is
// followed.
func (s Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	profile := &domain.Profile{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Avatar:    in.Avatar,
		CreatedAt: now,
	}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		// A concurrent registration can still hit the unique index.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	user.Profile = profile
	s.logger.Info("user registered", "user_id", user.ID)

	confirmToken, err := s.codec.IssuePurpose(token.PurposeConfirmEmail, user.ID)
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("%s/confirm_email/%s", s.cfg.PublicURL, confirmToken)
	body := "Confirm email account link: " + link

	result := &RegisterResult{User: user, MailSent: true}
	if err := s.mailer.Send(ctx, user.Email, "Confirm Email", body); err != nil {
		// The user row is already committed; a mail hiccup must not
		// undo it. The token stays verifiable for its full window.
		s.logger.Warn("confirmation mail failed", "user_id", user.ID, "error", err)
		result.MailSent = false
	}
	return result, nil
}

// ConfirmEmail consumes a confirmation token and marks the account verified.
// Returns the confirmed user so the caller can build the client redirect.
func (s Service) ConfirmEmail(ctx context.Context, confirmToken string) (*domain.User, error) {
	userID, err := s.codec.VerifyPurpose(token.PurposeConfirmEmail, confirmToken, s.cfg.EmailTokenTTL)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.users.SetConfirmedEmail(ctx, user.ID); err != nil {
		return nil, err
	}
	user.ConfirmedEmail = true
	s.logger.Info("email confirmed", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues a session token. Accounts that have
// not confirmed their email are rejected with ErrEmailNotVerified even when
// the credentials match.
func (s Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return "", ErrBadCredentials
	}
	if !user.ConfirmedEmail {
		return "", ErrEmailNotVerified
	}
	sessionToken, err := s.codec.IssueSession(user.ID, s.cfg.SessionTokenTTL)
	if err != nil {
		return "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return sessionToken, nil
}

// Authorize validates a bearer token and returns the user id it carries.
func (s Service) Authorize(sessionToken string) (string, error) {
	return s.codec.VerifySession(sessionToken)
}

// Refresh issues a fresh session token for an already authenticated
// identity, starting a new full validity window. Previously issued tokens
// stay valid until their own expiry.
func (s Service) Refresh(userID string) (string, error) {
	return s.codec.IssueSession(userID, s.cfg.SessionTokenTTL)
}

// RequestPasswordReset mails a reset link for the given address. The token
// is signed over the raw email, so the flow never reveals whether the
// address belongs to an account; a failed delivery is logged and swallowed
// for the same reason.
func (s Service) RequestPasswordReset(ctx context.Context, email string) error {
	resetToken, err := s.codec.IssuePurpose(token.PurposeResetPassword, email)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/forgot-password/%s", s.cfg.ClientFrontURL, resetToken)
	body := "Reset password link: " + link
	if err := s.mailer.Send(ctx, email, "Reset password", body); err != nil {
		s.logger.Warn("reset mail failed", "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token and stores a new password hash.
func (s Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	email, err := s.codec.VerifyPurpose(token.PurposeResetPassword, resetToken, s.cfg.EmailTokenTTL)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return ErrInvalidInput
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", user.ID)
	return nil
}
