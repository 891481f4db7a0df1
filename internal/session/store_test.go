package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

func newTestStore() (*Store, *storage.MemoryStorage) {
	st := storage.NewMemoryStorage()
	return NewStore(st, logger.NewNop()), st
}

func TestSetTokensPersistsAcrossStores(t *testing.T) {
	ctx := context.Background()
	store, st := newTestStore()

	require.NoError(t, store.SetTokens(ctx, "sid", "access", "refresh"))

	// Simulate a full page reload: a fresh Store on the same storage must
	// observe the same state.
	reloaded := NewStore(st, logger.NewNop())
	assert.Equal(t, "access", reloaded.AccessToken(ctx, "sid"))
	assert.Equal(t, "refresh", reloaded.RefreshToken(ctx, "sid"))
	assert.True(t, reloaded.IsAuthenticated(ctx, "sid"))
}

func TestTokensAreScopedPerSession(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.SetTokens(ctx, "sid-a", "access-a", "refresh-a"))

	assert.Empty(t, store.AccessToken(ctx, "sid-b"))
	assert.False(t, store.IsAuthenticated(ctx, "sid-b"))
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	user := &domain.User{ID: "user-1", Email: "user@example.com", Name: "Test User", EmailVerified: true}
	require.NoError(t, store.SetUser(ctx, "sid", user))

	got := store.User(ctx, "sid")
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.True(t, got.EmailVerified)
}

func TestUserMalformedReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store, st := newTestStore()

	require.NoError(t, st.Set(ctx, "session:user:sid", "{not json", 0))

	assert.Nil(t, store.User(ctx, "sid"))
}

func TestIsTokenValid(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	sign := func(exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": exp.Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return token
	}

	require.NoError(t, store.SetTokens(ctx, "sid", sign(time.Now().Add(time.Hour)), "refresh"))
	assert.True(t, store.IsTokenValid(ctx, "sid"))

	require.NoError(t, store.SetTokens(ctx, "sid", sign(time.Now().Add(-time.Minute)), "refresh"))
	assert.False(t, store.IsTokenValid(ctx, "sid"))

	require.NoError(t, store.SetTokens(ctx, "sid", "garbage", "refresh"))
	assert.False(t, store.IsTokenValid(ctx, "sid"))

	assert.False(t, store.IsTokenValid(ctx, "no-such-session"))
}

func TestClearTokensWipesEverything(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.SetTokens(ctx, "sid", "access", "refresh"))
	require.NoError(t, store.SetUser(ctx, "sid", &domain.User{ID: "user-1"}))

	require.NoError(t, store.ClearTokens(ctx, "sid"))

	assert.Empty(t, store.AccessToken(ctx, "sid"))
	assert.Empty(t, store.RefreshToken(ctx, "sid"))
	assert.Nil(t, store.User(ctx, "sid"))
	assert.False(t, store.IsAuthenticated(ctx, "sid"))
}
