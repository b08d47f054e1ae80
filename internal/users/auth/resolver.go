// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
)

// Resolver turns an access token into a live principal.
//
// It satisfies middleware.PrincipalResolver and is shared by the strict and
// optional modes. It has no side effects.
type Resolver struct {
	tokens *TokenService
	users  UserRepository
}

// NewResolver constructs a [Resolver].
func NewResolver(tokens *TokenService, users UserRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

var errSubjectGone = apperr.Unauthorized("Account no longer exists")

/*
Resolve verifies the token, then confirms the subject still exists so a
deleted account cannot keep using an unexpired access token.

Returns:
  - *identity.Principal: Projection built from the credential store (no hash)
  - error: apperr.Unauthorized, or a storage failure
*/
func (resolver *Resolver) Resolve(context context.Context, accessToken string) (*identity.Principal, error) {
	claimed, err := resolver.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := resolver.users.FindByID(context, claimed.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errSubjectGone
		}
		return nil, fmt.Errorf("auth_resolver_lookup_failed: %w", err)
	}

	return user.Principal(), nil
}
