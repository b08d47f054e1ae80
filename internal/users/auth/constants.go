// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultAccessTokenTTL is used when the configuration does not override it.
	// Kept short to limit the value of a leaked token.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime of a refresh token.
	DefaultRefreshTokenTTL = 10 * 24 * time.Hour

	// MaxUsernameLength bounds stored usernames.
	MaxUsernameLength = 32

	// MinUsernameLength bounds stored usernames.
	MinUsernameLength = 3

	// MaxDisplayNameLength bounds display names.
	MaxDisplayNameLength = 64
)

// Token service operation labels for metrics.
const (
	opIssue        = "issue"
	opRotate       = "rotate"
	opRevoke       = "revoke"
	opVerifyAccess = "verify_access"
)
