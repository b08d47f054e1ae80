// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"unique", &pgconn.PgError{Code: dberr.CodeUniqueViolation}, apperr.CodeConflict},
		{"wrapped_unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: dberr.CodeUniqueViolation}), apperr.CodeConflict},
		{"foreign_key", &pgconn.PgError{Code: dberr.CodeForeignKey}, apperr.CodeNotFound},
		{"other", errors.New("connection reset"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "Account")
			assert.True(t, apperr.HasCode(wrapped, tt.code))
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Account"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, dberr.IsUniqueViolation(errors.New("x")))
}
