// Package redisstore keeps the signed-in credential in Redis so that several
// processes on one host can share a session.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

// ErrUnavailable wraps every Redis transport failure.
var ErrUnavailable = errors.New("redis unavailable")

// Store implements environment.CredentialStore.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ environment.CredentialStore = (*Store)(nil)

// New creates a Store. prefix namespaces every key; a zero ttl keeps the
// credential until it is cleared.
func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{redis: client, prefix: prefix, ttl: ttl}
}

func (s *Store) credentialKey() string {
	return s.prefix + "credential"
}

func (s *Store) lastUserKey() string {
	return s.prefix + "last_user"
}

// Load implements environment.CredentialStore.
func (s *Store) Load(ctx context.Context) (data.SignedInData, bool, error) {
	raw, err := s.redis.Get(ctx, s.credentialKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return data.SignedInData{}, false, nil
	}
	if err != nil {
		return data.SignedInData{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var cred data.SignedInData
	if err := json.Unmarshal(raw, &cred); err != nil {
		return data.SignedInData{}, false, fmt.Errorf("load credential: decode: %w", err)
	}
	return cred, true, nil
}

// Save implements environment.CredentialStore. The last signed-in username
// is kept without expiry.
func (s *Store) Save(ctx context.Context, cred data.SignedInData) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("save credential: encode: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.credentialKey(), raw, s.ttl)
		pipe.Set(ctx, s.lastUserKey(), cred.Username, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear implements environment.CredentialStore. Deleting a missing key
// succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.credentialKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// LastUsername returns the username of the most recent Save, or "".
func (s *Store) LastUsername(ctx context.Context) (string, error) {
	name, err := s.redis.Get(ctx, s.lastUserKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return name, nil
}
