// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/platform/metrics"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/validate"
	"github.com/taibuivan/vidora/pkg/handle"
	"github.com/taibuivan/vidora/pkg/uuid"
)

// Service implements the account use cases on top of the [TokenService].
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	users  UserRepository
	tokens *TokenService
	logger *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(users UserRepository, tokens *TokenService, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// errInvalidCredentials is deliberately identical for unknown login and wrong password.
var errInvalidCredentials = apperr.Unauthorized("Invalid login credentials")

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: ValidationError, Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := handle.Canonical(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(input.Username)
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		Handle(FieldUsername, username, MinUsernameLength, MaxUsernameLength).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, constants.MinPasswordLength).
		MaxLen(FieldPassword, input.Password, constants.MaxPasswordLength).
		MaxLen(FieldDisplayName, displayName, MaxDisplayNameLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(FieldPassword, input.Password)
	if err != nil {
		return nil, err
	}

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
	}

	// Uniqueness is enforced by the store; a duplicate surfaces as Conflict.
	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "auth_user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// LoginResult represents a successfully established session.
type LoginResult struct {
	User   *User
	Tokens *TokenPair
}

/*
Login validates user credentials and issues a token pair, replacing any
previous session of the user.

Returns:
  - *LoginResult: User and fresh tokens
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	user, err := service.lookupLogin(context, input.Login)
	if err != nil {
		if apperr.IsNotFound(err) {
			metrics.LoginAttempts.WithLabelValues(metrics.OutcomeFailure).Inc()
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	// bcrypt comparison is constant-time
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, errInvalidCredentials
	}

	if sec.NeedsRehash(user.PasswordHash) {
		service.upgradeHash(context, user.ID, input.Password)
	}

	tokens, err := service.tokens.Issue(context, user.Principal())
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// upgradeHash re-hashes a password stored at an older bcrypt cost. Failures
// are logged and never fail the login.
func (service *Service) upgradeHash(context context.Context, userID, password string) {
	hashedPassword, err := sec.HashPassword(password)
	if err == nil {
		err = service.users.UpdatePassword(context, userID, hashedPassword)
	}
	if err != nil {
		service.logger.WarnContext(context, "auth_password_rehash_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return
	}
	service.logger.InfoContext(context, "auth_password_rehashed", slog.String("user_id", userID))
}

// lookupLogin resolves a login string as an email when it looks like one, else as a username.
func (service *Service) lookupLogin(context context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return service.users.FindByEmail(context, strings.ToLower(login))
	}
	return service.users.FindByUsername(context, handle.Canonical(login))
}

// Logout revokes the caller's session. It is idempotent.
func (service *Service) Logout(context context.Context, requestContext identity.RequestContext) error {
	if !requestContext.IsAuthenticated() {
		return apperr.Unauthorized("Authentication required")
	}
	return service.tokens.Revoke(context, requestContext.ActorID())
}

// # Session Management

/*
Refresh rotates a refresh token into a new pair.

Returns:
  - *LoginResult: Fresh tokens and the current user profile
  - error: Unauthorized, TokenReuseDetected or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized("Missing refresh token")
	}

	tokens, principal, err := service.tokens.Rotate(context, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(context, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_load_user_failed: %w", err)
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Me returns the caller's current profile straight from the credential store.
func (service *Service) Me(context context.Context, requestContext identity.RequestContext) (*User, error) {
	if !requestContext.IsAuthenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return service.users.FindByID(context, requestContext.ActorID())
}

/*
ChangePassword verifies the current password, stores the new hash and issues
a fresh pair. Issuing overwrites the session, so every refresh token minted
before the change stops working at once.

Returns:
  - *TokenPair: Tokens for the caller to continue the session
  - error: Unauthorized, ValidationError or storage failures
*/
func (service *Service) ChangePassword(context context.Context, requestContext identity.RequestContext, currentPassword, newPassword string) (*TokenPair, error) {
	if !requestContext.IsAuthenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, currentPassword).
		Required(FieldNewPassword, newPassword).
		MinLen(FieldNewPassword, newPassword, constants.MinPasswordLength).
		MaxLen(FieldNewPassword, newPassword, constants.MaxPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(context, requestContext.ActorID())
	if err != nil {
		return nil, err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return nil, apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := hashPassword(FieldNewPassword, newPassword)
	if err != nil {
		return nil, err
	}

	if err := service.users.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "auth_password_changed", slog.String("user_id", user.ID))
	return service.tokens.Issue(context, user.Principal())
}

// hashPassword maps the bcrypt byte limit to a field error.
func hashPassword(field, password string) (string, error) {
	hashed, err := sec.HashPassword(password)
	if errors.Is(err, sec.ErrPasswordTooLong) {
		return "", apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   field,
			Message: fmt.Sprintf("Maximum %d bytes", sec.MaxPasswordBytes),
		})
	}
	if err != nil {
		return "", fmt.Errorf("auth_service_hash_failed: %w", err)
	}
	return hashed, nil
}
