// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, passwordhash, displayname, avatarurl, coverimageurl, createdat, updatedat`

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on a duplicate username/email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, displayname, avatarurl, coverimageurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.CoverImageURL,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Username or email is already registered").WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves a live user record by email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE email = $1 AND deletedat IS NULL`
	return repository.findOne(context, "find_by_email", query, email)
}

// FindByUsername retrieves a live user record by username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE username = $1 AND deletedat IS NULL`
	return repository.findOne(context, "find_by_username", query, username)
}

// FindByID retrieves a live user record by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE id = $1 AND deletedat IS NULL`
	return repository.findOne(context, "find_by_id", query, id)
}

func (repository *PostgresUserRepository) findOne(context context.Context, operation, query string, argument string) (*User, error) {
	user := &User{}
	var avatarURL, coverImageURL *string

	err := repository.pool.QueryRow(context, query, argument).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&avatarURL,
		&coverImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", operation, err)
	}

	if avatarURL != nil {
		user.AvatarURL = *avatarURL
	}
	if coverImageURL != nil {
		user.CoverImageURL = *coverImageURL
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Returns:
  - error: apperr.NotFound if the account is gone, or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// Exists reports whether a live account with the given ID exists.
func (repository *PostgresUserRepository) Exists(context context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE id = $1 AND deletedat IS NULL)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_failed: %w", err)
	}
	return exists, nil
}

// # Session Store

// PostgresSessionStore implements the SessionStore interface on users.session.
//
// One row per principal; a NULL refreshtokenhash is a cleared session.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL implementation of SessionStore.
func NewSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// Get loads the session row of a principal. A missing row yields (nil, nil).
func (store *PostgresSessionStore) Get(context context.Context, principalID string) (*Session, error) {
	const query = `
		SELECT principalid, refreshtokenhash, expiresat, updatedat
		FROM users.session
		WHERE principalid = $1`

	session := &Session{}
	var tokenHash *string

	err := store.pool.QueryRow(context, query, principalID).Scan(
		&session.PrincipalID,
		&tokenHash,
		&session.ExpiresAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_session_store_get_failed: %w", err)
	}

	if tokenHash != nil {
		session.TokenHash = *tokenHash
	}

	return session, nil
}

// Put upserts the principal's session, overwriting any previous digest.
func (store *PostgresSessionStore) Put(context context.Context, principalID, tokenHash string, expiresAt time.Time) error {
	const query = `
		INSERT INTO users.session (principalid, refreshtokenhash, expiresat, updatedat)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (principalid) DO UPDATE
		SET refreshtokenhash = EXCLUDED.refreshtokenhash,
		    expiresat = EXCLUDED.expiresat,
		    updatedat = EXCLUDED.updatedat`

	if _, err := store.pool.Exec(context, query, principalID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("postgres_session_store_put_failed: %w", err)
	}
	return nil
}

/*
CompareAndSet swaps the digest in a single conditional UPDATE.

The row lock taken by UPDATE serialises concurrent callers: the second one
re-evaluates the WHERE clause against the committed new digest and matches
zero rows.
*/
func (store *PostgresSessionStore) CompareAndSet(context context.Context, principalID, expectedHash, newHash string, expiresAt time.Time) (bool, error) {
	const query = `
		UPDATE users.session
		SET refreshtokenhash = $3, expiresat = $4, updatedat = NOW()
		WHERE principalid = $1 AND refreshtokenhash = $2`

	tag, err := store.pool.Exec(context, query, principalID, expectedHash, newHash, expiresAt)
	if err != nil {
		return false, fmt.Errorf("postgres_session_store_cas_failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Clear nulls the digest. Clearing an absent session is a no-op.
func (store *PostgresSessionStore) Clear(context context.Context, principalID string) error {
	const query = `
		UPDATE users.session
		SET refreshtokenhash = NULL, updatedat = NOW()
		WHERE principalid = $1`

	if _, err := store.pool.Exec(context, query, principalID); err != nil {
		return fmt.Errorf("postgres_session_store_clear_failed: %w", err)
	}
	return nil
}
