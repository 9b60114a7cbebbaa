package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageContract runs the same behavior checks against every backend.
func storageContract(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, map[string]string{KeyUser: `{"id":"a1"}`, KeyToken: "T"}))

	v, ok, err := s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"a1"}`, v)

	v, ok, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", v)

	require.NoError(t, s.Clear(ctx, KeyUser, KeyToken))

	_, ok, err = s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing absent keys is fine.
	require.NoError(t, s.Clear(ctx, KeyUser, KeyToken))
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	storageContract(t, s)
	assert.Equal(t, 0, s.Len())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storageContract(t, NewFileStorage(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty session file should be removed")
}

func TestFileStorage_PermissionsAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	require.NoError(t, NewFileStorage(path).Set(ctx, map[string]string{KeyToken: "T"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh instance sees the same data.
	v, ok, err := NewFileStorage(path).Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", v)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewFileStorage(path)
	_, _, err := s.Get(context.Background(), KeyUser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode session file")

	// Set replaces an unreadable file.
	require.NoError(t, s.Set(context.Background(), map[string]string{KeyToken: "T"}))
	v, ok, err := s.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", v)
}

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStorage(client, "adminctl:"), mr
}

func TestRedisStorage(t *testing.T) {
	s, _ := setupTestRedis(t)
	storageContract(t, s)
}

func TestRedisStorage_UsesPrefix(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, s.Set(context.Background(), map[string]string{KeyToken: "T"}))

	got, err := mr.Get("adminctl:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "T", got)
	assert.Zero(t, mr.TTL("adminctl:auth_token"), "session keys never expire on their own")
}

func TestRedisStorage_ConnectionError(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), KeyToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get")
}
