// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session), the Token Service that
issues and rotates token pairs, and the resolver used by the HTTP middleware.

# Architecture

Entities defined here carry no transport concerns. The credential hash never
leaves this package: callers outside it see an [identity.Principal] only.
*/
package auth

import (
	"time"

	"github.com/taibuivan/vidora/internal/platform/identity"
)

// # Domain Entities

// User represents a registered member of the Vidora platform.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName   string    `json:"display_name"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Principal returns the read-only identity projection of the user.
func (user *User) Principal() *identity.Principal {
	return &identity.Principal{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

// Session is the single refresh-token session of a principal.
//
// TokenHash is the SHA-256 digest of the only refresh token currently accepted
// for the principal. An empty TokenHash means the session was cleared.
type Session struct {
	PrincipalID string
	TokenHash   string
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the session still anchors a refresh token at now.
func (session *Session) IsActive(now time.Time) bool {
	return session != nil && session.TokenHash != "" && now.Before(session.ExpiresAt)
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldDisplayName     = "display_name"
	FieldLogin           = "login"
	FieldRefreshToken    = "refresh_token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)
