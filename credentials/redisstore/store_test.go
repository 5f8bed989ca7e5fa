package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/credentials/redisstore"
	"github.com/hasbyte1/go-credential-utils/hashing"
)

// newTestStore connects to the Redis server named by CREDTOOL_TEST_REDIS_URL
// and skips the test when it is unset or unreachable. Keys are namespaced by
// test name and removed afterwards.
func newTestStore(t *testing.T) *redisstore.Store {
	t.Helper()
	rawURL := os.Getenv("CREDTOOL_TEST_REDIS_URL")
	if rawURL == "" {
		t.Skip("CREDTOOL_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(rawURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis unreachable: %v", err)
	}

	prefix := "credtool-test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return redisstore.New(client, prefix)
}

func TestNewFromURL_Invalid(t *testing.T) {
	_, err := redisstore.NewFromURL("not a url", "")
	require.Error(t, err)
}

func TestStore_SaveFindDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Find(ctx, "alice")
	require.ErrorIs(t, err, credentials.ErrNotFound)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	rec := &credentials.Record{
		UserID:     "alice",
		Credential: hashing.Credential{Salt: "salt", Hash: "hash"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, rec.Credential, got.Credential)
	assert.True(t, now.Equal(got.CreatedAt))

	require.NoError(t, s.Delete(ctx, "alice"))
	require.ErrorIs(t, s.Delete(ctx, "alice"), credentials.ErrNotFound)
}

func TestStore_WorksWithService(t *testing.T) {
	s := newTestStore(t)
	h, err := hashing.NewHasher(hashing.Options{Cost: 4})
	require.NoError(t, err)
	svc := credentials.NewService(s, h, credentials.DefaultConfig())
	ctx := context.Background()

	_, err = svc.SetPassword(ctx, "bob", "pw")
	require.NoError(t, err)
	res, err := svc.Authenticate(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.True(t, res.Matched)
}
