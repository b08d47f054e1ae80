// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/vidora/internal/platform/apperr"
)

// SQLSTATE codes the application reacts to.
const (
	CodeUniqueViolation = "23505"
	CodeCheckViolation  = "23514"
	CodeForeignKey      = "23503"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// resource names the entity in NotFound and Conflict messages (e.g. "Video").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource).WithCause(err)
	}

	// 2. Constraint violations
	switch SQLState(err) {
	case CodeUniqueViolation:
		return apperr.Conflict(resource + " already exists").WithCause(err)
	case CodeForeignKey:
		return apperr.NotFound(resource).WithCause(err)
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// SQLState returns the Postgres SQLSTATE carried by err, or "" when there is none.
func SQLState(err error) string {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == CodeUniqueViolation
}
