// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/sec"
)

// # Credential Store Fake

type memoryUsers struct {
	mu    sync.RWMutex
	users map[string]*User

	// findErr makes FindByID fail as if the database were down.
	findErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*User)}
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if store.findErr != nil {
		return nil, store.findErr
	}
	if user, ok := store.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) find(match func(*User) bool) (*User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, user := range store.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	return store.find(func(user *User) bool { return user.Email == email })
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	return store.find(func(user *User) bool { return user.Username == username })
}

func (store *memoryUsers) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("Username or email is already registered")
		}
	}
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (store *memoryUsers) Exists(_ context.Context, id string) (bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	_, ok := store.users[id]
	return ok, nil
}

func (store *memoryUsers) delete(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.users, id)
}

// # Session Store Fake

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]Session

	// failCAS forces CompareAndSet to report a lost race.
	failCAS bool

	// casErr makes CompareAndSet fail with a storage error.
	casErr error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]Session)}
}

func (store *memorySessions) Get(_ context.Context, principalID string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, ok := store.sessions[principalID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (store *memorySessions) Put(_ context.Context, principalID, tokenHash string, expiresAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[principalID] = Session{PrincipalID: principalID, TokenHash: tokenHash, ExpiresAt: expiresAt, UpdatedAt: time.Now()}
	return nil
}

func (store *memorySessions) CompareAndSet(_ context.Context, principalID, expectedHash, newHash string, expiresAt time.Time) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.casErr != nil {
		return false, store.casErr
	}
	session, ok := store.sessions[principalID]
	if store.failCAS || !ok || session.TokenHash != expectedHash {
		return false, nil
	}
	store.sessions[principalID] = Session{PrincipalID: principalID, TokenHash: newHash, ExpiresAt: expiresAt, UpdatedAt: time.Now()}
	return true, nil
}

func (store *memorySessions) Clear(_ context.Context, principalID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if session, ok := store.sessions[principalID]; ok {
		session.TokenHash = ""
		store.sessions[principalID] = session
	}
	return nil
}

func (store *memorySessions) hash(principalID string) string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.sessions[principalID].TokenHash
}

// # Fixture

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testSigner(t *testing.T) *sec.TokenSigner {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err == nil {
			testKey = key
		}
	})
	require.NotNil(t, testKey)
	return sec.NewTokenSigner(testKey, "vidora.test")
}

// brokenSigner verifies like the real signer but cannot mint refresh tokens.
type brokenSigner struct {
	*sec.TokenSigner
}

func (brokenSigner) GenerateRefreshToken(string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signing key unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	users    *memoryUsers
	sessions *memorySessions
	tokens   *TokenService
	service  *Service
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newMemoryUsers()
	sessions := newMemorySessions()
	tokens := NewTokenService(testSigner(t), sessions, users, time.Minute, time.Hour, discardLogger())

	return &fixture{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		service:  NewService(users, tokens, discardLogger()),
		resolver: NewResolver(tokens, users),
	}
}

// seedUser registers a user with the given password through the service.
func (fixture *fixture) seedUser(t *testing.T, username, password string) *User {
	t.Helper()
	user, err := fixture.service.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@vidora.test",
		Password: password,
	})
	require.NoError(t, err)
	return user
}
