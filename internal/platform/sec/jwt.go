// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token signing.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It knows nothing about sessions or principals; the auth
// domain composes it into the Token Service.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the 'typ' claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for any token that fails parsing, signature, issuer or expiry checks.
	ErrInvalidToken = errors.New("sec: invalid token")

	// ErrWrongTokenType is returned when a refresh token is presented as an access token or vice versa.
	ErrWrongTokenType = errors.New("sec: wrong token type")
)

// AccessClaims represents the payload embedded inside a JWT Access Token.
//
// The profile fields let the middleware reconstruct the caller's identity
// without a database round-trip on every request.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Username    string `json:"unm"`
	Email       string `json:"eml"`
	DisplayName string `json:"dnm"`
	Type        string `json:"typ"`
}

// RefreshClaims represents the payload of a JWT Refresh Token.
// It deliberately carries the subject only.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Type string `json:"typ"`
}

// AccessSubject is the identity projection signed into an access token.
type AccessSubject struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
}

// TokenSigner signs and verifies JWT tokens using RS256.
type TokenSigner struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	now        func() time.Time
}

// NewTokenSigner creates a TokenSigner from an in-memory RSA key pair.
func NewTokenSigner(privateKey *rsa.PrivateKey, issuer string) *TokenSigner {
	return &TokenSigner{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		now:        time.Now,
	}
}

// NewTokenSignerFromFiles creates a TokenSigner.
// It reads PEM-encoded RSA keys from the provided filesystem paths.
func NewTokenSignerFromFiles(privateKeyPath, publicKeyPath, issuer string) (*TokenSigner, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenSigner{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the signer that reads time from now. Used by tests.
func (signer *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	clone := *signer
	clone.now = now
	return &clone
}

// GenerateAccessToken signs a short-lived access token for subject.
func (signer *TokenSigner) GenerateAccessToken(subject AccessSubject, timeToLive time.Duration) (string, time.Time, error) {
	issuedAt := signer.now()
	expiresAt := issuedAt.Add(timeToLive)

	claims := AccessClaims{
		RegisteredClaims: signer.registered(subject.ID, issuedAt, expiresAt),
		Username:         subject.Username,
		Email:            subject.Email,
		DisplayName:      subject.DisplayName,
		Type:             TokenTypeAccess,
	}

	signed, err := signer.sign(claims)
	return signed, expiresAt, err
}

// GenerateRefreshToken signs a long-lived refresh token for subjectID.
//
// Every token carries a random 'jti' so two tokens minted in the same second differ.
func (signer *TokenSigner) GenerateRefreshToken(subjectID string, timeToLive time.Duration) (string, time.Time, error) {
	issuedAt := signer.now()
	expiresAt := issuedAt.Add(timeToLive)

	claims := RefreshClaims{
		RegisteredClaims: signer.registered(subjectID, issuedAt, expiresAt),
		Type:             TokenTypeRefresh,
	}

	signed, err := signer.sign(claims)
	return signed, expiresAt, err
}

// VerifyAccessToken checks signature, issuer, expiry and type of an access token.
func (signer *TokenSigner) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := signer.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// VerifyRefreshToken checks signature, issuer, expiry and type of a refresh token.
func (signer *TokenSigner) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := signer.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (signer *TokenSigner) registered(subject string, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    signer.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (signer *TokenSigner) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(signer.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

func (signer *TokenSigner) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return signer.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(signer.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(signer.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
