// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Vidora", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("username", "tai").
		MinLen("username", "tai", 3).
		MaxLen("username", "tai", 10).
		Email("email", "tai@vidora.app").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").       // Fails
		MinLen("username", "a", 5).     // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		value   string
		isValid bool
	}{
		{"https://cdn.vidora.app/avatar.png", true},
		{"http://localhost:9000/a.jpg", true},
		{"ftp://example.com/file", false},
		{"/relative/path.png", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := &validate.Validator{}
			v.URL("avatar_url", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

func TestValidator_UUIDAndHandle(t *testing.T) {
	tests := []struct {
		name    string
		run     func(v *validate.Validator)
		isValid bool
	}{
		{"uuid lowercase", func(v *validate.Validator) { v.UUID("id", "0190a3e2-7c1d-7b4e-9f2a-4d5e6f708192") }, true},
		{"uuid uppercase", func(v *validate.Validator) { v.UUID("id", "0190A3E2-7C1D-7B4E-9F2A-4D5E6F708192") }, true},
		{"uuid garbage", func(v *validate.Validator) { v.UUID("id", "not-a-uuid") }, false},
		{"handle ok", func(v *validate.Validator) { v.Handle("username", "alice.dev", 3, 32) }, true},
		{"handle empty is skipped", func(v *validate.Validator) { v.Handle("username", "", 3, 32) }, true},
		{"handle too short", func(v *validate.Validator) { v.Handle("username", "al", 3, 32) }, false},
		{"handle trailing dot", func(v *validate.Validator) { v.Handle("username", "alice.", 3, 32) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.run(v)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}
