package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/worklog-dictionaries/internal/cache"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

func testProfile() domain.UserProfile {
	return domain.UserProfile{ID: "u1", Email: "admin@example.com", Role: domain.UserRoleAdmin}
}

func TestSetCredentialsPersistsAcrossInstances(t *testing.T) {
	mem := cache.NewMemory()
	ctx := context.Background()

	first := New(mem, nil)
	first.SetCredentials(ctx, "token-123", testProfile())
	require.True(t, first.IsAuthenticated())

	second := New(mem, nil)
	second.HydrateFromStorage(ctx)

	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, "token-123", second.Token())
	require.NotNil(t, second.Profile())
	assert.Equal(t, "admin@example.com", second.Profile().Email)
}

func TestHydrateDiscardsCorruptProfile(t *testing.T) {
	mem := cache.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "worklog.accessToken", []byte("tok")))
	require.NoError(t, mem.Set(ctx, "worklog.profile", []byte("{broken")))

	store := New(mem, nil)
	store.HydrateFromStorage(ctx)

	assert.True(t, store.IsAuthenticated(), "token survives a corrupt profile")
	assert.Nil(t, store.Profile())
}

func TestClearWipesMemoryAndCache(t *testing.T) {
	mem := cache.NewMemory()
	ctx := context.Background()

	store := New(mem, nil)
	store.SetCredentials(ctx, "tok", testProfile())
	store.Clear(ctx)

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Profile())

	_, err := mem.Get(ctx, "worklog.accessToken")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	_, err = mem.Get(ctx, "worklog.profile")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestNilCacheDisablesDurabilityOnly(t *testing.T) {
	store := New(nil, nil)
	store.HydrateFromStorage(context.Background())
	store.SetCredentials(context.Background(), "tok", testProfile())

	assert.True(t, store.IsAuthenticated())
	store.Clear(context.Background())
	assert.False(t, store.IsAuthenticated())
}

func TestProfileReturnsCopy(t *testing.T) {
	store := New(nil, nil)
	store.SetCredentials(context.Background(), "tok", testProfile())

	p := store.Profile()
	p.Email = "tampered@example.com"

	assert.Equal(t, "admin@example.com", store.Profile().Email)
}
