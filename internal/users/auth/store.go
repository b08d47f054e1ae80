// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts (the Credential Store).
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent or deleted
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent or deleted
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent or deleted
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Returns:
		  - error: apperr.Conflict when the username or email is taken
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		Exists reports whether a live account with the given ID exists.
	*/
	Exists(context context.Context, id string) (bool, error)
}

// # Session Data Access

// SessionStore persists at most one refresh-token digest per principal.
//
// It is a pure data holder. Every implementation must make CompareAndSet
// atomic with respect to concurrent callers.
type SessionStore interface {

	/*
		Get returns the session of a principal.

		Returns:
		  - *Session: nil when the principal never had a session
		  - error: Storage failures
	*/
	Get(context context.Context, principalID string) (*Session, error)

	/*
		Put unconditionally records tokenHash as the principal's only valid
		refresh token, creating the session if needed.
	*/
	Put(context context.Context, principalID, tokenHash string, expiresAt time.Time) error

	/*
		CompareAndSet replaces the stored digest with newHash only if the stored
		digest still equals expectedHash.

		Returns:
		  - bool: false when the stored value differs or the session is missing
		  - error: Storage failures
	*/
	CompareAndSet(context context.Context, principalID, expectedHash, newHash string, expiresAt time.Time) (bool, error)

	/*
		Clear removes the refresh digest so no refresh token is accepted for the principal.
	*/
	Clear(context context.Context, principalID string) error
}
