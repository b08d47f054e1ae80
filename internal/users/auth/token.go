// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/platform/metrics"
	"github.com/taibuivan/vidora/internal/platform/sec"
)

// # Contracts & Types

// TokenSigner signs and verifies the raw JWTs. Implemented by [sec.TokenSigner].
type TokenSigner interface {
	GenerateAccessToken(subject sec.AccessSubject, timeToLive time.Duration) (string, time.Time, error)
	GenerateRefreshToken(subjectID string, timeToLive time.Duration) (string, time.Time, error)
	VerifyAccessToken(tokenString string) (*sec.AccessClaims, error)
	VerifyRefreshToken(tokenString string) (*sec.RefreshClaims, error)
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

var (
	errInvalidAccessToken  = apperr.Unauthorized("Invalid or expired access token")
	errInvalidRefreshToken = apperr.Unauthorized("Invalid or expired refresh token")
	errSessionRevoked      = apperr.Unauthorized("Session has ended; please sign in again")
)

// TokenService issues, verifies and rotates token pairs.
//
// # Invariant
//
// Exactly one refresh token is authoritative per principal: the one whose
// digest is held by the [SessionStore]. Rotation is single-use.
type TokenService struct {
	signer     TokenSigner
	sessions   SessionStore
	users      UserRepository
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewTokenService constructs a [TokenService]. Zero TTLs fall back to the defaults.
func NewTokenService(
	signer TokenSigner,
	sessions SessionStore,
	users UserRepository,
	accessTTL, refreshTTL time.Duration,
	logger *slog.Logger,
) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	return &TokenService{
		signer:     signer,
		sessions:   sessions,
		users:      users,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

/*
Issue signs a new pair for principal and records the refresh digest as the
session's only valid value, overwriting any previous one.

Parameters:
  - context: context.Context
  - principal: *identity.Principal

Returns:
  - *TokenPair: Signed tokens and their expiries
  - error: Signing or storage failures
*/
func (service *TokenService) Issue(context context.Context, principal *identity.Principal) (*TokenPair, error) {
	pair, err := service.sign(principal)
	if err != nil {
		metrics.TokenOperations.WithLabelValues(opIssue, metrics.OutcomeError).Inc()
		return nil, err
	}

	if err := service.sessions.Put(context, principal.ID, sec.HashToken(pair.RefreshToken), pair.RefreshExpiresAt); err != nil {
		metrics.TokenOperations.WithLabelValues(opIssue, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("auth_token_issue_session_failed: %w", err)
	}

	metrics.TokenOperations.WithLabelValues(opIssue, metrics.OutcomeSuccess).Inc()
	return pair, nil
}

/*
VerifyAccess checks signature, issuer, type and expiry of an access token and
returns the identity it carries.

It touches neither the session store nor the credential store.

Returns:
  - *identity.Principal: Identity from the token claims
  - error: apperr.Unauthorized
*/
func (service *TokenService) VerifyAccess(token string) (*identity.Principal, error) {
	claims, err := service.signer.VerifyAccessToken(token)
	if err != nil {
		metrics.TokenOperations.WithLabelValues(opVerifyAccess, metrics.OutcomeFailure).Inc()
		return nil, errInvalidAccessToken.WithCause(err)
	}

	return &identity.Principal{
		ID:          claims.Subject,
		Username:    claims.Username,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

/*
Rotate exchanges a refresh token for a new pair.

Description:
 1. Verify the presented token (Unauthorized on failure).
 2. Load the session. A missing or cleared session is Unauthorized. A digest
    that differs from the presented token means it was already rotated away:
    the session is cleared and TokenReuseDetected is returned.
 3. Re-load the principal, sign a new pair and compare-and-set the digest. A
    lost race is also reuse: the session is cleared. Any other failure past the
    digest check also clears the session before the error is returned.

The presented token is never valid again, whatever the outcome.

Returns:
  - *TokenPair: The new pair
  - *identity.Principal: Fresh identity from the credential store
  - error: apperr.Unauthorized, apperr.TokenReuseDetected or storage failures
*/
func (service *TokenService) Rotate(context context.Context, refreshToken string) (*TokenPair, *identity.Principal, error) {
	claims, err := service.signer.VerifyRefreshToken(refreshToken)
	if err != nil {
		metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeFailure).Inc()
		return nil, nil, errInvalidRefreshToken.WithCause(err)
	}
	principalID := claims.Subject

	// Load the authoritative digest
	session, err := service.sessions.Get(context, principalID)
	if err != nil {
		metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeError).Inc()
		return nil, nil, fmt.Errorf("auth_token_rotate_load_session_failed: %w", err)
	}

	if !session.IsActive(service.now()) {
		metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeFailure).Inc()
		return nil, nil, errSessionRevoked
	}

	presentedHash := sec.HashToken(refreshToken)
	if !sec.EqualHashes(session.TokenHash, presentedHash) {
		return nil, nil, service.reuseDetected(context, principalID, "stale_token")
	}

	// The account may have been deleted since the token was issued
	user, err := service.users.FindByID(context, principalID)
	if err != nil {
		if apperr.IsNotFound(err) {
			if clearErr := service.sessions.Clear(context, principalID); clearErr != nil {
				return nil, nil, fmt.Errorf("auth_token_rotate_clear_failed: %w", clearErr)
			}
			metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeFailure).Inc()
			return nil, nil, errSessionRevoked
		}
		return nil, nil, service.abandon(context, principalID, fmt.Errorf("auth_token_rotate_load_user_failed: %w", err))
	}

	principal := user.Principal()
	pair, err := service.sign(principal)
	if err != nil {
		return nil, nil, service.abandon(context, principalID, err)
	}

	// Atomic relative to the comparison above
	swapped, err := service.sessions.CompareAndSet(context, principalID, presentedHash, sec.HashToken(pair.RefreshToken), pair.RefreshExpiresAt)
	if err != nil {
		return nil, nil, service.abandon(context, principalID, fmt.Errorf("auth_token_rotate_swap_failed: %w", err))
	}
	if !swapped {
		return nil, nil, service.reuseDetected(context, principalID, "lost_swap")
	}

	metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeSuccess).Inc()
	return pair, principal, nil
}

/*
Revoke clears the principal's session so no refresh token is accepted.
Used by logout, reuse detection and password change.
*/
func (service *TokenService) Revoke(context context.Context, principalID string) error {
	if err := service.sessions.Clear(context, principalID); err != nil {
		metrics.TokenOperations.WithLabelValues(opRevoke, metrics.OutcomeError).Inc()
		return fmt.Errorf("auth_token_revoke_failed: %w", err)
	}

	metrics.TokenOperations.WithLabelValues(opRevoke, metrics.OutcomeSuccess).Inc()
	return nil
}

// abandon clears the session after a rotation failed past the digest check,
// so the presented token cannot be retried. The cause is returned unchanged
// unless the clear itself fails.
func (service *TokenService) abandon(context context.Context, principalID string, cause error) error {
	metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeError).Inc()

	if err := service.sessions.Clear(context, principalID); err != nil {
		service.logger.ErrorContext(context, "auth_token_rotate_abandon_failed",
			slog.String("principal_id", principalID),
			slog.Any("error", err),
		)
		return errors.Join(cause, fmt.Errorf("auth_token_rotate_clear_failed: %w", err))
	}
	return cause
}

// reuseDetected revokes the session before reporting, so a retry with the same token cannot succeed.
func (service *TokenService) reuseDetected(context context.Context, principalID, reason string) error {
	metrics.TokenOperations.WithLabelValues(opRotate, metrics.OutcomeReuse).Inc()

	service.logger.WarnContext(context, "auth_token_reuse_detected",
		slog.String("principal_id", principalID),
		slog.String("reason", reason),
	)

	if err := service.sessions.Clear(context, principalID); err != nil {
		return fmt.Errorf("auth_token_reuse_clear_failed: %w", err)
	}
	return apperr.TokenReuseDetected()
}

func (service *TokenService) sign(principal *identity.Principal) (*TokenPair, error) {
	accessToken, accessExpiresAt, err := service.signer.GenerateAccessToken(sec.AccessSubject{
		ID:          principal.ID,
		Username:    principal.Username,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
	}, service.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_token_sign_access_failed: %w", err)
	}

	refreshToken, refreshExpiresAt, err := service.signer.GenerateRefreshToken(principal.ID, service.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_token_sign_refresh_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}
