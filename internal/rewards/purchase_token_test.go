package rewards

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	data map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{data: map[string]string{}}
}

func (f *fakeTokenStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, key string) (string, error) {
	val, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (f *fakeTokenStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeTokenStore) PurchaseTokenKey(uid string) string {
	return "souvenir:purchase_token:" + uid
}

func newTestTokenManager(t *testing.T) (*TokenManager, *fakeTokenStore, *time.Time) {
	t.Helper()

	store := newFakeTokenStore()
	manager, err := NewTokenManager(store, 24*time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return now }
	return manager, store, &now
}

func TestTokenValidImmediatelyAfterIssuance(t *testing.T) {
	manager, _, _ := newTestTokenManager(t)
	ctx := context.Background()

	token, err := manager.Mark(ctx, "hana", "SOUV-1-000001")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, token.ExpiresAt.Sub(token.PurchasedAt))

	valid, err := manager.HasValid(ctx, "hana")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestTokenExpiresOnceClockPassesExpiry(t *testing.T) {
	manager, _, now := newTestTokenManager(t)
	ctx := context.Background()

	_, err := manager.Mark(ctx, "hana", "SOUV-1-000001")
	require.NoError(t, err)

	*now = now.Add(25 * time.Hour)
	valid, err := manager.HasValid(ctx, "hana")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestConsumeInvalidatesRegardlessOfExpiry(t *testing.T) {
	manager, store, _ := newTestTokenManager(t)
	ctx := context.Background()

	_, err := manager.Mark(ctx, "hana", "SOUV-1-000001")
	require.NoError(t, err)
	require.NoError(t, manager.Consume(ctx, "hana"))

	valid, err := manager.HasValid(ctx, "hana")
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, store.data)
}

func TestHasValidIsFalseWithoutToken(t *testing.T) {
	manager, _, _ := newTestTokenManager(t)

	valid, err := manager.HasValid(context.Background(), "hana")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCorruptedTokenReadsAsAbsent(t *testing.T) {
	manager, store, _ := newTestTokenManager(t)
	store.data[store.PurchaseTokenKey("hana")] = "{not json"

	valid, err := manager.HasValid(context.Background(), "hana")
	require.NoError(t, err)
	assert.False(t, valid)
}
