package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/hashing"
)

// setupTestDB creates a named shared in-memory SQLite database. The name is
// derived from t.Name() so tests stay isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", url.PathEscape(t.Name()))
	db, err := OpenDSN(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStore_SaveAndFind(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 9, 30, 0, 123, time.UTC)
	rec := &credentials.Record{
		UserID:     "alice",
		Credential: hashing.Credential{Salt: "$2y$04$abcdefghijklmnopqrstuu", Hash: "0123456789012345678901234567890"},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, rec.Credential, got.Credential)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, created.Equal(got.UpdatedAt))
}

func TestStore_FindMissing(t *testing.T) {
	s := New(setupTestDB(t))
	_, err := s.Find(context.Background(), "nobody")
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestStore_SaveKeepsCreatedAt(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(24 * time.Hour)
	require.NoError(t, s.Save(ctx, &credentials.Record{
		UserID: "bob", Credential: hashing.Credential{Salt: "s1", Hash: "h1"},
		CreatedAt: first, UpdatedAt: first,
	}))
	require.NoError(t, s.Save(ctx, &credentials.Record{
		UserID: "bob", Credential: hashing.Credential{Salt: "s2", Hash: "h2"},
		CreatedAt: later, UpdatedAt: later,
	}))

	got, err := s.Find(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, hashing.Credential{Salt: "s2", Hash: "h2"}, got.Credential)
	assert.True(t, first.Equal(got.CreatedAt))
	assert.True(t, later.Equal(got.UpdatedAt))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_Delete(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &credentials.Record{UserID: "carol"}))

	require.NoError(t, s.Delete(ctx, "carol"))
	require.ErrorIs(t, s.Delete(ctx, "carol"), credentials.ErrNotFound)
}

func TestStore_SaveRequiresUserID(t *testing.T) {
	s := New(setupTestDB(t))
	require.ErrorIs(t, s.Save(context.Background(), &credentials.Record{}), credentials.ErrEmptyUserID)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, migrateUp(db.Writer))

	version, dirty, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, New(db).Save(context.Background(), &credentials.Record{
		UserID:     "erin",
		Credential: hashing.Credential{Salt: "s", Hash: "h"},
	}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	rec, err := New(db).Find(context.Background(), "erin")
	require.NoError(t, err)
	assert.Equal(t, "h", rec.Credential.Hash)

	var mode string
	require.NoError(t, db.Reader.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	_, err = Open("")
	require.Error(t, err)
}

func TestStore_WorksWithService(t *testing.T) {
	h, err := hashing.NewHasher(hashing.Options{Cost: 4, Pepper: "p"})
	require.NoError(t, err)
	svc := credentials.NewService(New(setupTestDB(t)), h, credentials.DefaultConfig())
	ctx := context.Background()

	_, err = svc.SetPassword(ctx, "dave", "hunter2")
	require.NoError(t, err)

	res, err := svc.Authenticate(ctx, "dave", "hunter2")
	require.NoError(t, err)
	assert.True(t, res.Matched)

	_, err = svc.Authenticate(ctx, "dave", "hunter3")
	assert.ErrorIs(t, err, credentials.ErrInvalidCredentials)
}
