// Package redisstore provides a Redis implementation of
// [credentials.Repository]. Each record is a hash at "<prefix><userID>" with
// the fields salt, hash, created_at and updated_at.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/hashing"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "credential:"

// Compile-time interface satisfaction check.
var _ credentials.Repository = (*Store)(nil)

// Store is the Redis implementation of [credentials.Repository].
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New creates a Store on client. An empty prefix selects [DefaultPrefix].
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// NewFromURL parses a redis:// URL and creates a Store on a new client.
func NewFromURL(rawURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redisstore: parse url: %w", err)
	}
	return New(redis.NewClient(opts), prefix), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(userID string) string {
	return s.prefix + userID
}

// Find retrieves the record for userID. Returns [credentials.ErrNotFound] when absent.
func (s *Store) Find(ctx context.Context, userID string) (*credentials.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: find %q: %w", userID, err)
	}
	if len(fields) == 0 {
		return nil, credentials.ErrNotFound
	}

	rec := &credentials.Record{
		UserID:     userID,
		Credential: hashing.Credential{Salt: fields["salt"], Hash: fields["hash"]},
	}
	if rec.CreatedAt, err = parseTime(fields["created_at"]); err != nil {
		return nil, fmt.Errorf("redisstore: find %q: created_at: %w", userID, err)
	}
	if rec.UpdatedAt, err = parseTime(fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("redisstore: find %q: updated_at: %w", userID, err)
	}
	return rec, nil
}

// Save creates or replaces the record for rec.UserID in a single MULTI/EXEC
// transaction.
func (s *Store) Save(ctx context.Context, rec *credentials.Record) error {
	if rec.UserID == "" {
		return credentials.ErrEmptyUserID
	}
	key := s.key(rec.UserID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"salt", rec.Credential.Salt,
			"hash", rec.Credential.Hash,
			"created_at", formatTime(rec.CreatedAt),
			"updated_at", formatTime(rec.UpdatedAt),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: save %q: %w", rec.UserID, err)
	}
	return nil
}

// Delete removes the record for userID. Returns [credentials.ErrNotFound] when absent.
func (s *Store) Delete(ctx context.Context, userID string) error {
	n, err := s.client.Del(ctx, s.key(userID)).Result()
	if err != nil {
		return fmt.Errorf("redisstore: delete %q: %w", userID, err)
	}
	if n == 0 {
		return credentials.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
