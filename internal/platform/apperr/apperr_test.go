// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
)

/*
TestTaxonomy_StatusMapping verifies every taxonomy constructor maps to its HTTP status.
*/
func TestTaxonomy_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"unauthorized", apperr.Unauthorized("x"), apperr.CodeUnauthorized, http.StatusUnauthorized},
		{"token_reuse", apperr.TokenReuseDetected(), apperr.CodeTokenReuseDetected, http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("x"), apperr.CodeForbidden, http.StatusForbidden},
		{"not_found", apperr.NotFound("Video"), apperr.CodeNotFound, http.StatusNotFound},
		{"conflict", apperr.Conflict("x"), apperr.CodeConflict, http.StatusConflict},
		{"validation", apperr.ValidationError("x"), apperr.CodeValidation, http.StatusBadRequest},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestAs_WrappedChain verifies that wrapped AppErrors are still discoverable.
*/
func TestAs_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("service_failed: %w", apperr.NotFound("Video"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "Video not found", ae.Message)
	assert.True(t, apperr.IsNotFound(wrapped))
	assert.False(t, apperr.IsConflict(wrapped))
	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestWithCause_DoesNotMutateOriginal ensures shared sentinel errors stay untouched.
*/
func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	base := apperr.Unauthorized("Invalid token")
	cause := errors.New("signature mismatch")

	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.ErrorIs(t, withCause, cause)
	assert.Equal(t, base.Code, withCause.Code)
}
