// Package sqlstore provides a SQLite implementation of
// [credentials.Repository] backed by modernc.org/sqlite, with embedded schema
// migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/hashing"
)

// Compile-time interface satisfaction check.
var _ credentials.Repository = (*Store)(nil)

// Store is the SQLite implementation of [credentials.Repository]. The salt
// and hash are written in a single statement.
type Store struct {
	db *DB
}

// New creates a Store on an open database.
func New(db *DB) *Store {
	return &Store{db: db}
}

// Find retrieves the record for userID. Returns [credentials.ErrNotFound] when absent.
func (s *Store) Find(ctx context.Context, userID string) (*credentials.Record, error) {
	const query = `SELECT salt, hash, created_at, updated_at FROM credentials WHERE user_id = ?`

	var salt, hash, created, updated string
	err := s.db.Reader.QueryRowContext(ctx, query, userID).Scan(&salt, &hash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credentials.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find %q: %w", userID, err)
	}

	rec := &credentials.Record{
		UserID:     userID,
		Credential: hashing.Credential{Salt: salt, Hash: hash},
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("sqlstore: find %q: created_at: %w", userID, err)
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("sqlstore: find %q: updated_at: %w", userID, err)
	}
	return rec, nil
}

// Save creates or replaces the record for rec.UserID. The original
// created_at is kept on replace.
func (s *Store) Save(ctx context.Context, rec *credentials.Record) error {
	if rec.UserID == "" {
		return credentials.ErrEmptyUserID
	}
	const query = `
INSERT INTO credentials (user_id, salt, hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    salt = excluded.salt,
    hash = excluded.hash,
    updated_at = excluded.updated_at`

	_, err := s.db.Writer.ExecContext(ctx, query,
		rec.UserID,
		rec.Credential.Salt,
		rec.Credential.Hash,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlstore: save %q: %w", rec.UserID, err)
	}
	return nil
}

// Delete removes the record for userID. Returns [credentials.ErrNotFound] when absent.
func (s *Store) Delete(ctx context.Context, userID string) error {
	res, err := s.db.Writer.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: delete %q: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: delete %q: %w", userID, err)
	}
	if n == 0 {
		return credentials.ErrNotFound
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlstore: count: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
