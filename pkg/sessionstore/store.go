package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/pkg/authflow"
)

// keyPrefix namespaces reset nonces in the shared keyspace. The exact format
// is part of the ephemeral-store contract: "reset_password_" + username.
const keyPrefix = "reset_password_"

// Store is a Redis-backed authflow.SessionStore. Redis expiry provides the
// per-key TTL, SETNX provides the atomic check-then-create that the
// initiate path requires.
type Store struct {
	client redis.UniversalClient
}

// New creates a session store on an established Redis client.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// PutIfAbsent stores the nonce unless one is already pending for the
// username. An existing entry keeps its value and remaining TTL.
func (s *Store) PutIfAbsent(ctx context.Context, username, nonce string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, Key(username), nonce, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("sessionstore: setnx: %w", err)
	}
	return ok, nil
}

// Get returns the pending nonce, or authflow.ErrNoPendingSession when the
// entry is absent or already expired.
func (s *Store) Get(ctx context.Context, username string) (string, error) {
	nonce, err := s.client.Get(ctx, Key(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", authflow.ErrNoPendingSession
	}
	if err != nil {
		return "", fmt.Errorf("sessionstore: get: %w", err)
	}
	return nonce, nil
}

// Delete removes the pending nonce. Deleting an absent entry is not an
// error; consume-once semantics come from Get seeing nothing afterwards.
func (s *Store) Delete(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, Key(username)).Err(); err != nil {
		return fmt.Errorf("sessionstore: del: %w", err)
	}
	return nil
}

// Key returns the Redis key holding the pending nonce for a username.
func Key(username string) string {
	return keyPrefix + username
}
