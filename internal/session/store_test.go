package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/DeliveryConsole/internal/domain"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
	"github.com/utafrali/DeliveryConsole/pkg/logger"
)

func sampleUser() domain.UserRecord {
	return domain.UserRecord{
		ID:          "admin-1",
		FullName:    "Ada Admin",
		Email:       "ada@example.com",
		PhoneNumber: "+15550100",
		UserType:    domain.UserTypeAdmin,
		IsVerified:  true,
		IsActive:    true,
		CreatedAt:   "2024-01-02T03:04:05Z",
	}
}

// failingStorage fails every operation.
type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStorage) Set(context.Context, map[string]string) error      { return f.err }
func (f failingStorage) Clear(context.Context, ...string) error            { return f.err }

func TestStore_InitialState(t *testing.T) {
	s := NewStore(NewMemoryStorage(), logger.Discard())
	assert.Equal(t, StateUninitialized, s.State())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Equal(t, "", s.Token())
}

func TestStore_HydrateEmpty(t *testing.T) {
	s := NewStore(NewMemoryStorage(), logger.Discard())
	assert.Equal(t, StateAnonymous, s.Hydrate(context.Background()))
	assert.False(t, s.IsAuthenticated())
}

func TestStore_LoginWritesThrough(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.Discard())
	s.Hydrate(ctx)

	require.NoError(t, s.Login(ctx, sampleUser(), "T"))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "T", s.Token())

	rawUser, ok, _ := storage.Get(ctx, KeyUser)
	require.True(t, ok)
	var stored domain.UserRecord
	require.NoError(t, json.Unmarshal([]byte(rawUser), &stored))
	assert.Equal(t, sampleUser(), stored)

	token, ok, _ := storage.Get(ctx, KeyToken)
	require.True(t, ok)
	assert.Equal(t, "T", token)
	assert.Equal(t, 2, storage.Len())
}

func TestStore_ReloadReconstructsSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewStore(NewFileStorage(path), logger.Discard())
	first.Hydrate(ctx)
	require.NoError(t, first.Login(ctx, sampleUser(), "T"))

	second := NewStore(NewFileStorage(path), logger.Discard())
	assert.Equal(t, StateAuthenticated, second.Hydrate(ctx))
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.Discard())
	require.NoError(t, s.Login(ctx, sampleUser(), "T"))

	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, StateAnonymous, s.State())
	_, ok, _ := storage.Get(ctx, KeyUser)
	assert.False(t, ok)
	_, ok, _ = storage.Get(ctx, KeyToken)
	assert.False(t, ok)
}

func TestStore_ExpireClearsEverything(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.Discard())
	require.NoError(t, s.Login(ctx, sampleUser(), "T"))

	require.NoError(t, s.Expire(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 0, storage.Len())
}

func TestStore_LoginRejectsEmptyToken(t *testing.T) {
	s := NewStore(NewMemoryStorage(), logger.Discard())
	err := s.Login(context.Background(), sampleUser(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.False(t, s.IsAuthenticated())
}

func TestStore_LoginStorageFailureLeavesMemoryUntouched(t *testing.T) {
	s := NewStore(failingStorage{err: errors.New("disk full")}, logger.Discard())
	err := s.Login(context.Background(), sampleUser(), "T")
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestStore_LogoutStorageFailureStillClearsMemory(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.Discard())
	require.NoError(t, s.Login(ctx, sampleUser(), "T"))

	s.storage = failingStorage{err: errors.New("disk gone")}
	require.Error(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
}

func TestStore_HydrateCorruptUserClearsStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, map[string]string{KeyUser: "{broken", KeyToken: "T"}))

	s := NewStore(storage, logger.Discard())
	assert.Equal(t, StateAnonymous, s.Hydrate(ctx))
	assert.Equal(t, 0, storage.Len())
}

func TestStore_HydrateHalfSessionClearsStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, map[string]string{KeyToken: "T"}))

	s := NewStore(storage, logger.Discard())
	assert.Equal(t, StateAnonymous, s.Hydrate(ctx))
	assert.Equal(t, 0, storage.Len())
}

// stuckStorage reads normally but cannot clear.
type stuckStorage struct{ *MemoryStorage }

func (stuckStorage) Clear(context.Context, ...string) error { return errors.New("read-only") }

func TestStore_HydrateHalfSessionLogsClearFailure(t *testing.T) {
	ctx := context.Background()
	storage := stuckStorage{NewMemoryStorage()}
	require.NoError(t, storage.Set(ctx, map[string]string{KeyToken: "T"}))

	var buf bytes.Buffer
	s := NewStore(storage, logger.NewWithWriter("session", "debug", "json", &buf))
	assert.Equal(t, StateAnonymous, s.Hydrate(ctx))
	assert.Contains(t, buf.String(), "failed to clear session storage")
	assert.Contains(t, buf.String(), "read-only")
}

func TestStore_HydrateStorageErrorFailsSafe(t *testing.T) {
	s := NewStore(failingStorage{err: errors.New("redis down")}, logger.Discard())
	assert.Equal(t, StateAnonymous, s.Hydrate(context.Background()))
	assert.False(t, s.IsAuthenticated())
}

func TestStore_UserReturnsCopy(t *testing.T) {
	s := NewStore(NewMemoryStorage(), logger.Discard())
	require.NoError(t, s.Login(context.Background(), sampleUser(), "T"))

	u := s.User()
	u.FullName = "mutated"
	assert.Equal(t, "Ada Admin", s.User().FullName)
}

func TestStore_TokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	s := NewStore(NewMemoryStorage(), logger.Discard())
	_, ok := s.TokenExpiry()
	assert.False(t, ok)

	require.NoError(t, s.Login(context.Background(), sampleUser(), token))
	got, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

func TestStore_TokenExpiry_OpaqueToken(t *testing.T) {
	s := NewStore(NewMemoryStorage(), logger.Discard())
	require.NoError(t, s.Login(context.Background(), sampleUser(), "opaque-token"))
	_, ok := s.TokenExpiry()
	assert.False(t, ok)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "hydrating", StateHydrating.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "state(9)", State(9).String())
}
