package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type countingUserRepo struct {
	users map[uuid.UUID]user.User
	calls int
}

func (r *countingUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFound("User", id.String())
	}
	return &u, nil
}

func newCachedRepo(t *testing.T) (*miniredis.Miniredis, *countingUserRepo, user.Repository, user.User) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	u := user.User{ID: uuid.New(), Email: "alice@example.com", Username: "alice"}
	backing := &countingUserRepo{users: map[uuid.UUID]user.User{u.ID: u}}
	return mr, backing, NewCachedUserRepo(backing, rdb, time.Minute, logger.NewNopLogger()), u
}

func TestCachedUserRepo_ReadThrough(t *testing.T) {
	mr, backing, repo, u := newCachedRepo(t)
	ctx := context.Background()

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, *got)
	assert.True(t, mr.Exists(userCacheKey(u.ID)))
	assert.Equal(t, time.Minute, mr.TTL(userCacheKey(u.ID)))

	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, *got)
	assert.Equal(t, 1, backing.calls)

	mr.FastForward(2 * time.Minute)
	_, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.calls)
}

func TestCachedUserRepo_MissIsNotCached(t *testing.T) {
	mr, backing, repo, _ := newCachedRepo(t)
	missing := uuid.New()

	_, err := repo.FindByID(context.Background(), missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, mr.Exists(userCacheKey(missing)))
	assert.Equal(t, 1, backing.calls)
}

func TestCachedUserRepo_FallsBackWhenRedisIsDown(t *testing.T) {
	mr, backing, repo, u := newCachedRepo(t)
	mr.Close()

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, 1, backing.calls)
}

func TestCachedUserRepo_IgnoresCorruptEntry(t *testing.T) {
	mr, backing, repo, u := newCachedRepo(t)
	require.NoError(t, mr.Set(userCacheKey(u.ID), "{not json"))

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, 1, backing.calls)
}
