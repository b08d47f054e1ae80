// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for new password hashes.
const PasswordCost = 12

// MaxPasswordBytes is the bcrypt input limit. It is measured in bytes, not characters.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned when a password exceeds [MaxPasswordBytes].
var ErrPasswordTooLong = errors.New("sec: password exceeds 72 bytes")

// HashPassword hashes a plain-text password with bcrypt at [PasswordCost].
func HashPassword(plainTextPassword string) (string, error) {
	if len(plainTextPassword) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// NeedsRehash reports whether a stored hash was produced with a lower cost
// than [PasswordCost]. Unparseable hashes are left alone.
func NeedsRehash(existingHash string) bool {
	cost, err := bcrypt.Cost([]byte(existingHash))
	return err == nil && cost < PasswordCost
}

// HashToken returns the hex SHA-256 digest of a token. Session stores keep
// this digest instead of the raw refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// EqualHashes compares two token digests in constant time.
func EqualHashes(left, right string) bool {
	return subtle.ConstantTimeCompare([]byte(left), []byte(right)) == 1
}
