package repositories_test

import (
	"context"
	"testing"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSessionRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	repo := repositories.NewRedisSessionRepository(client)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.AdminSession{ID: "sid-1", UserID: "admin-1", Role: models.RoleAdmin, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.AdminSession{ID: "sid-2", UserID: "admin-1", Role: models.RoleAdmin, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)}))

	ttl := mr.TTL("admin_session:sid-1")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", got.UserID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	mr.FastForward(90 * time.Minute)
	_, err = repo.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound, "redis drops the key at expiry")

	require.NoError(t, repo.Delete(ctx, "sid-2"))
	require.NoError(t, repo.Delete(ctx, "sid-2"))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = repo.Create(ctx, &models.AdminSession{ID: "sid-3", UserID: "admin-1", ExpiresAt: now.Add(-time.Minute)})
	assert.Error(t, err)
}

func TestRedisAttemptRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	repo := repositories.NewRedisAttemptRepository(client)

	a, err := repo.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Failures)

	lockedUntil := time.Now().Add(15 * time.Minute)
	a.Failures = 5
	a.LockedUntil = &lockedUntil
	require.NoError(t, repo.Save(ctx, a))
	assert.True(t, mr.Exists("login_attempts:admin@xivttw.com"))

	a, err = repo.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 5, a.Failures)
	assert.True(t, a.Locked(time.Now()))

	require.NoError(t, repo.Reset(ctx, "admin@xivttw.com"))
	a, err = repo.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Failures)
	assert.Nil(t, a.LockedUntil)
}
