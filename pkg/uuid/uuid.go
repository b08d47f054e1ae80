// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

Accounts, videos, comments and posts are keyed by Version 7 values, which sort
by creation time and keep PostgreSQL B-tree indexes compact. Identifiers that
arrive from clients go through [Canonical] so that string comparisons (such as
the self-subscription check) see one spelling per value.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether s parses as a UUID in any accepted spelling.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}

// Canonical returns the lowercase hyphenated form of s.
//
// Braced, URN and uppercase spellings are accepted. ok is false when s is not a UUID.
func Canonical(s string) (canonical string, ok bool) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
