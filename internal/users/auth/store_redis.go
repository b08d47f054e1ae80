// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidora/internal/platform/constants"
)

// Hash fields of a session key.
const (
	sessionFieldHash      = "hash"
	sessionFieldExpiresAt = "exp"
	sessionFieldUpdatedAt = "upd"
)

// compareAndSetScript swaps the digest only when it still matches ARGV[1].
//
// KEYS[1] session key
// ARGV[1] expected digest, ARGV[2] new digest, ARGV[3] expiry (unix ms), ARGV[4] now (unix ms)
var compareAndSetScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'hash')
if not current or current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'hash', ARGV[2], 'exp', ARGV[3], 'upd', ARGV[4])
redis.call('PEXPIREAT', KEYS[1], ARGV[3])
return 1
`)

// RedisSessionStore implements SessionStore on Redis hashes keyed by principal.
//
// Keys expire with the refresh token, so an expired session reads as absent.
// Clear deletes the key.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(principalID string) string {
	return constants.RedisPrefixSession + principalID
}

// Get reads the session hash. A missing key yields (nil, nil).
func (store *RedisSessionStore) Get(context context.Context, principalID string) (*Session, error) {
	values, err := store.client.HGetAll(context, sessionKey(principalID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_session_store_get_failed: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	return decodeSession(principalID, values)
}

// decodeSession rebuilds a [Session] from its hash fields. Both timestamps are
// Unix milliseconds and a malformed one is a decode failure.
func decodeSession(principalID string, values map[string]string) (*Session, error) {
	expiresAt, err := strconv.ParseInt(values[sessionFieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis_session_store_decode_failed: %s: %w", sessionFieldExpiresAt, err)
	}
	updatedAt, err := strconv.ParseInt(values[sessionFieldUpdatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis_session_store_decode_failed: %s: %w", sessionFieldUpdatedAt, err)
	}

	return &Session{
		PrincipalID: principalID,
		TokenHash:   values[sessionFieldHash],
		ExpiresAt:   time.UnixMilli(expiresAt),
		UpdatedAt:   time.UnixMilli(updatedAt),
	}, nil
}

// Put overwrites the session hash and aligns the key TTL with the token expiry.
func (store *RedisSessionStore) Put(context context.Context, principalID, tokenHash string, expiresAt time.Time) error {
	key := sessionKey(principalID)

	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key,
			sessionFieldHash, tokenHash,
			sessionFieldExpiresAt, expiresAt.UnixMilli(),
			sessionFieldUpdatedAt, time.Now().UnixMilli(),
		)
		pipe.PExpireAt(context, key, expiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_store_put_failed: %w", err)
	}
	return nil
}

// CompareAndSet runs the swap as a Lua script so it is atomic on the server.
func (store *RedisSessionStore) CompareAndSet(context context.Context, principalID, expectedHash, newHash string, expiresAt time.Time) (bool, error) {
	swapped, err := compareAndSetScript.Run(context, store.client,
		[]string{sessionKey(principalID)},
		expectedHash, newHash, expiresAt.UnixMilli(), time.Now().UnixMilli(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis_session_store_cas_failed: %w", err)
	}
	return swapped == 1, nil
}

// Clear deletes the session key.
func (store *RedisSessionStore) Clear(context context.Context, principalID string) error {
	if err := store.client.Del(context, sessionKey(principalID)).Err(); err != nil {
		return fmt.Errorf("redis_session_store_clear_failed: %w", err)
	}
	return nil
}
