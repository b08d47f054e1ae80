// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package handle canonicalises user handles (usernames).
//
// # Usage
//
// Handles are the public, URL-addressable names of channels
// (e.g., /api/v1/channels/alice). Two inputs that look the same to a person
// must map to the same handle, so registration and lookup both go through
// [Canonical].
package handle

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// disallowed matches any character outside the handle alphabet.
	disallowed = regexp.MustCompile(`[^a-z0-9_.]+`)
	// valid is the final shape of a canonical handle.
	valid = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_.]*[a-z0-9])?$`)

	folder = cases.Fold()
)

// Canonical converts user input into the stored handle form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKD (compatibility forms: ｆｕｌｌｗｉｄｔｈ → fullwidth, é → e + mark).
// 2. Removes combining marks (accents).
// 3. Case-folds.
// 4. Drops characters outside [a-z0-9_.] and trims separators at both ends.
func Canonical(input string) string {
	// 1. Normalize and remove accents
	chain := transform.Chain(norm.NFKD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(chain, strings.TrimSpace(input))

	// 2. Fold case
	result = folder.String(result)

	// 3. Strip everything else
	result = disallowed.ReplaceAllString(result, "")
	return strings.Trim(result, "_.")
}

// Valid reports whether h is already canonical and within [minLen, maxLen].
func Valid(h string, minLen, maxLen int) bool {
	return len(h) >= minLen && len(h) <= maxLen && valid.MatchString(h)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
