package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionguard/core/session"
)

// SessionStore implements session.Store on top of Redis string keys.
// SetMany uses MSET, which Redis applies atomically.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore wraps client. Every key is namespaced with prefix.
func NewSessionStore(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

// Get implements session.Store.
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrNotFound
	}
	return v, err
}

// SetMany implements session.Store.
func (s *SessionStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, s.prefix+k, v)
	}
	return s.client.MSet(ctx, pairs...).Err()
}

// Delete implements session.Store.
func (s *SessionStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.client.Del(ctx, full...).Err()
}
