// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/identity"
	"github.com/taibuivan/vidora/internal/platform/sec"
)

func TestIssue_VerifyAccessReturnsIdentity(t *testing.T) {
	fixture := newFixture(t)
	principals := []*identity.Principal{
		{ID: "0190a6e2-7c1f-7000-8000-000000000001", Username: "alice", Email: "alice@vidora.test", DisplayName: "Alice"},
		{ID: "0190a6e2-7c1f-7000-8000-000000000002", Username: "bob", Email: "bob@vidora.test", DisplayName: ""},
	}

	for _, principal := range principals {
		pair, err := fixture.tokens.Issue(context.Background(), principal)
		require.NoError(t, err)

		verified, err := fixture.tokens.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, principal, verified)
		assert.Equal(t, sec.HashToken(pair.RefreshToken), fixture.sessions.hash(principal.ID))
	}
}

func TestVerifyAccess_Rejects(t *testing.T) {
	fixture := newFixture(t)
	principal := &identity.Principal{ID: "u-1", Username: "alice"}

	pair, err := fixture.tokens.Issue(context.Background(), principal)
	require.NoError(t, err)

	expiredSigner := testSigner(t).WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	expired, _, err := expiredSigner.GenerateAccessToken(sec.AccessSubject{ID: "u-1"}, time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":       "",
		"malformed":     "abc.def.ghi",
		"expired":       expired,
		"refresh_token": pair.RefreshToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fixture.tokens.VerifyAccess(token)
			assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		})
	}
}

func TestRotate_IsSingleUse(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	first, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)

	second, principal, err := fixture.tokens.Rotate(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Replaying the rotated-away token is reuse and revokes the session.
	_, _, err = fixture.tokens.Rotate(ctx, first.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenReuseDetected))
	assert.Empty(t, fixture.sessions.hash(user.ID))

	// The legitimate successor is dead too.
	_, _, err = fixture.tokens.Rotate(ctx, second.RefreshToken)
	assert.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

func TestRotate_ConcurrentSameTokenYieldsOneSuccess(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)

	const attempts = 2
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		errs      = make([]error, attempts)
		successes = make([]*TokenPair, attempts)
	)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			successes[i], _, errs[i] = fixture.tokens.Rotate(ctx, pair.RefreshToken)
		}()
	}
	close(start)
	wg.Wait()

	succeeded, reused := 0, 0
	for i := range attempts {
		switch {
		case errs[i] == nil:
			succeeded++
			assert.NotNil(t, successes[i])
		case apperr.HasCode(errs[i], apperr.CodeTokenReuseDetected):
			reused++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, reused)
}

func TestRotate_ManyConcurrentAttemptsNeverGrantTwice(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)

	const attempts = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
		ok    int
		codes = map[string]int{}
	)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _, err := fixture.tokens.Rotate(ctx, pair.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			codes[apperr.As(err).Code]++
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.GreaterOrEqual(t, codes[apperr.CodeTokenReuseDetected], 1)
	assert.Equal(t, attempts-1, codes[apperr.CodeTokenReuseDetected]+codes[apperr.CodeUnauthorized])
	assert.Empty(t, fixture.sessions.hash(user.ID))
}

func TestRotate_AfterRevokeIsUnauthenticated(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)
	require.NoError(t, fixture.tokens.Revoke(ctx, user.ID))

	_, _, err = fixture.tokens.Rotate(ctx, pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestRotate_WithoutSessionIsUnauthenticated(t *testing.T) {
	fixture := newFixture(t)

	refresh, _, err := testSigner(t).GenerateRefreshToken("never-logged-in", time.Hour)
	require.NoError(t, err)

	_, _, err = fixture.tokens.Rotate(context.Background(), refresh)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestRotate_RejectsInvalidTokens(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "garbage",
		"access_token": pair.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := fixture.tokens.Rotate(ctx, token)
			assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		})
	}

	// Invalid tokens never disturb the live session.
	assert.Equal(t, sec.HashToken(pair.RefreshToken), fixture.sessions.hash(user.ID))
}

func TestRotate_DeletedAccount(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)
	fixture.users.delete(user.ID)

	_, _, err = fixture.tokens.Rotate(ctx, pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.Empty(t, fixture.sessions.hash(user.ID))
}

func TestRotate_LostSwapIsReuse(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)
	fixture.sessions.failCAS = true

	_, _, err = fixture.tokens.Rotate(ctx, pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenReuseDetected))
	assert.Empty(t, fixture.sessions.hash(user.ID))
}

func TestIssue_ReplacesPreviousSession(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	first, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)
	second, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)

	_, _, err = fixture.tokens.Rotate(ctx, first.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenReuseDetected))

	_, _, err = fixture.tokens.Rotate(ctx, second.RefreshToken)
	assert.Error(t, err, "reuse detection revoked the whole session")
}

func TestRotate_ExpiredSession(t *testing.T) {
	fixture := newFixture(t)
	ctx := context.Background()
	user := fixture.seedUser(t, "alice", "secret1")

	pair, err := fixture.tokens.Issue(ctx, user.Principal())
	require.NoError(t, err)

	// Session expiry recorded in the store is honoured independently of the token.
	require.NoError(t, fixture.sessions.Put(ctx, user.ID, sec.HashToken(pair.RefreshToken), time.Now().Add(-time.Second)))

	_, _, err = fixture.tokens.Rotate(ctx, pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestRotate_FailureAfterDigestMatchConsumesToken(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fixture *fixture) *TokenService
	}{
		{"user_lookup_fails", func(fixture *fixture) *TokenService {
			fixture.users.findErr = errors.New("db down")
			return fixture.tokens
		}},
		{"signing_fails", func(fixture *fixture) *TokenService {
			return NewTokenService(brokenSigner{testSigner(t)}, fixture.sessions, fixture.users, time.Minute, time.Hour, discardLogger())
		}},
		{"swap_fails", func(fixture *fixture) *TokenService {
			fixture.sessions.casErr = errors.New("connection reset")
			return fixture.tokens
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newFixture(t)
			ctx := context.Background()
			user := fixture.seedUser(t, "alice", "secret1")

			pair, err := fixture.tokens.Issue(ctx, user.Principal())
			require.NoError(t, err)

			tokens := tt.setup(fixture)
			_, _, err = tokens.Rotate(ctx, pair.RefreshToken)
			require.Error(t, err)
			assert.False(t, apperr.IsAppError(err), "storage failures surface as internal errors")
			assert.Empty(t, fixture.sessions.hash(user.ID))

			// Recovered infrastructure must not revive the presented token.
			fixture.users.findErr = nil
			fixture.sessions.casErr = nil
			_, _, err = fixture.tokens.Rotate(ctx, pair.RefreshToken)
			assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		})
	}
}
